package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adamstosho/HeartSyc/apperrors"
	"github.com/adamstosho/HeartSyc/database"
	"github.com/adamstosho/HeartSyc/middleware"
	"github.com/adamstosho/HeartSyc/models"
)

const requestTimeout = 10 * time.Second

// Handler carries the store handle and the configuration the endpoints
// need. Everything is injected at startup; no package-level state.
type Handler struct {
	DB              *database.Store
	JWTSecret       string
	CloudinaryURL   string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
}

func New(db *database.Store, jwtSecret string) *Handler {
	return &Handler{DB: db, JWTSecret: jwtSecret}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// respondError maps a core error onto its HTTP status. Anything outside
// the taxonomy is a 500 and gets logged.
func respondError(c *gin.Context, err error) {
	if appErr := apperrors.As(err); appErr != nil {
		c.JSON(appErr.Status(), gin.H{"message": appErr.Message})
		return
	}
	log.Printf("[%s] unexpected error: %v", c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

// currentUserID returns the authenticated caller's id from the context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadActor fetches the caller's user document and enforces the banned
// check the auth layer promises every protected endpoint.
func (h *Handler) loadActor(ctx context.Context, c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments || (err == nil && user.IsBanned) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found or banned"})
		return nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &user, true
}

// fetchUserMap is the reference-expansion step: it resolves a set of user
// ids to their documents in one query.
func (h *Handler) fetchUserMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	result := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := h.DB.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}
