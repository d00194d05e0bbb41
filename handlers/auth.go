package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/adamstosho/HeartSyc/middleware"
	"github.com/adamstosho/HeartSyc/models"
)

const tokenLifetime = 24 * time.Hour

type PreferencesRequest struct {
	PreferredGender   string   `json:"preferredGender" binding:"required,oneof=male female"`
	PreferredReligion string   `json:"preferredReligion"`
	PreferredTribes   []string `json:"preferredTribes"`
	SpokenLanguages   []string `json:"spokenLanguages"`
	AgeRange          struct {
		Min int `json:"min" binding:"required,min=18"`
		Max int `json:"max" binding:"required,min=18"`
	} `json:"ageRange" binding:"required"`
}

type RegisterRequest struct {
	Name             string             `json:"name" binding:"required"`
	Email            string             `json:"email" binding:"required,email"`
	Password         string             `json:"password" binding:"required,min=6"`
	Gender           string             `json:"gender" binding:"required,oneof=male female"`
	DOB              string             `json:"dob" binding:"required"` // YYYY-MM-DD
	Tribe            string             `json:"tribe" binding:"required"`
	Religion         string             `json:"religion" binding:"required"`
	State            string             `json:"state" binding:"required"`
	SpokenLanguages  []string           `json:"spokenLanguages" binding:"required,min=1"`
	MaritalIntent    string             `json:"maritalIntent" binding:"required"`
	Education        string             `json:"education"`
	EmploymentStatus string             `json:"employmentStatus"`
	Bio              string             `json:"bio" binding:"max=500"`
	Preferences      PreferencesRequest `json:"preferences" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "dob must be YYYY-MM-DD"})
		return
	}
	if req.Preferences.AgeRange.Max < req.Preferences.AgeRange.Min {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ageRange max must not be below min"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	err = h.DB.Users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already in use"})
		return
	}
	if err != mongo.ErrNoDocuments {
		respondError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		ID:               primitive.NewObjectID(),
		Name:             req.Name,
		Email:            email,
		Password:         string(hashed),
		Gender:           req.Gender,
		DOB:              dob,
		Tribe:            req.Tribe,
		Religion:         req.Religion,
		State:            req.State,
		SpokenLanguages:  req.SpokenLanguages,
		MaritalIntent:    req.MaritalIntent,
		Education:        req.Education,
		EmploymentStatus: req.EmploymentStatus,
		Bio:              req.Bio,
		Preferences: models.Preferences{
			PreferredGender:   req.Preferences.PreferredGender,
			PreferredReligion: req.Preferences.PreferredReligion,
			PreferredTribes:   req.Preferences.PreferredTribes,
			SpokenLanguages:   req.Preferences.SpokenLanguages,
			AgeRange: models.AgeRange{
				Min: req.Preferences.AgeRange.Min,
				Max: req.Preferences.AgeRange.Max,
			},
		},
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}

	if _, err := h.DB.Users.InsertOne(ctx, user); err != nil {
		// The unique email index backstops the earlier lookup
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var user models.User
	err := h.DB.Users.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if user.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"message": "Account is banned"})
		return
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user's own document.
func (h *Handler) Me(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) signToken(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.JWTSecret))
}
