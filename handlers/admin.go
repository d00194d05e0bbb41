package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adamstosho/HeartSyc/models"
)

type ReportUserRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// GetAllUsers lists every account for the admin dashboard.
func (h *Handler) GetAllUsers(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := h.DB.Users.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) VerifyUser(c *gin.Context) {
	h.setUserFlag(c, bson.M{"isVerified": true}, "User verified")
}

func (h *Handler) BanUser(c *gin.Context) {
	h.setUserFlag(c, bson.M{"isBanned": true}, "User banned")
}

func (h *Handler) UnbanUser(c *gin.Context) {
	h.setUserFlag(c, bson.M{"isBanned": false}, "User unbanned")
}

func (h *Handler) setUserFlag(c *gin.Context, set bson.M, message string) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var user models.User
	err = h.DB.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

// AdminDeleteUser removes any account by id.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := h.DB.Users.DeleteOne(ctx, bson.M{"_id": targetID})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ReportUser files an abuse report. Any authenticated user may report.
func (h *Handler) ReportUser(c *gin.Context) {
	reportedID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	reporterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ReportUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	count, err := h.DB.Users.CountDocuments(ctx, bson.M{"_id": reportedID})
	if err != nil {
		respondError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	report := models.Report{
		ID:        primitive.NewObjectID(),
		Reporter:  reporterID,
		Reported:  reportedID,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}
	if _, err := h.DB.Reports.InsertOne(ctx, report); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report received"})
}

// reportView expands reporter and reported to name and email.
type reportView struct {
	ID        string    `json:"id"`
	Reporter  reportee  `json:"reporter"`
	Reported  reportee  `json:"reported"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

type reportee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetReports lists every report with both parties expanded.
func (h *Handler) GetReports(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := h.DB.Reports.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		respondError(c, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(reports)*2)
	for _, r := range reports {
		ids = append(ids, r.Reporter, r.Reported)
	}
	users, err := h.fetchUserMap(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]reportView, len(reports))
	for i, r := range reports {
		views[i] = reportView{
			ID:        r.ID.Hex(),
			Reporter:  newReportee(r.Reporter, users),
			Reported:  newReportee(r.Reported, users),
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, views)
}

func newReportee(id primitive.ObjectID, users map[primitive.ObjectID]*models.User) reportee {
	r := reportee{ID: id.Hex()}
	if u, ok := users[id]; ok {
		r.Name = u.Name
		r.Email = u.Email
	}
	return r
}

// GetAdminStats aggregates platform counters for the dashboard.
func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)

	counts := []struct {
		name  string
		coll  *mongo.Collection
		query bson.M
	}{
		{"totalUsers", h.DB.Users, bson.M{}},
		{"verifiedUsers", h.DB.Users, bson.M{"isVerified": true}},
		{"bannedUsers", h.DB.Users, bson.M{"isBanned": true}},
		{"totalReports", h.DB.Reports, bson.M{}},
		{"recentUsers", h.DB.Users, bson.M{"createdAt": bson.M{"$gte": weekAgo}}},
		{"totalAdmins", h.DB.Users, bson.M{"role": models.RoleAdmin}},
	}

	stats := gin.H{}
	for _, item := range counts {
		n, err := item.coll.CountDocuments(ctx, item.query)
		if err != nil {
			respondError(c, err)
			return
		}
		stats[item.name] = n
	}

	c.JSON(http.StatusOK, stats)
}
