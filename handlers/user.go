package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adamstosho/HeartSyc/models"
	"github.com/adamstosho/HeartSyc/pagination"
)

type UpdateUserRequest struct {
	Name             string              `json:"name"`
	Tribe            string              `json:"tribe"`
	Religion         string              `json:"religion"`
	State            string              `json:"state"`
	SpokenLanguages  []string            `json:"spokenLanguages"`
	MaritalIntent    string              `json:"maritalIntent"`
	Education        string              `json:"education"`
	EmploymentStatus string              `json:"employmentStatus"`
	Bio              string              `json:"bio" binding:"max=500"`
	Preferences      *models.Preferences `json:"preferences"`
}

// FilterUsers browses verified, unbanned profiles with optional query
// filters and page/limit pagination.
func (h *Handler) FilterUsers(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	query := bson.M{"isBanned": false, "isVerified": true}
	if gender := c.Query("gender"); gender != "" {
		query["gender"] = gender
	}
	if religion := c.Query("religion"); religion != "" {
		query["religion"] = religion
	}
	if tribe := c.Query("tribe"); tribe != "" {
		query["tribe"] = tribe
	}

	dobRange := bson.M{}
	now := time.Now()
	if minAge, ok := intQuery(c, "minAge"); ok {
		dobRange["$lte"] = now.AddDate(-minAge, 0, 0)
	}
	if maxAge, ok := intQuery(c, "maxAge"); ok {
		dobRange["$gte"] = now.AddDate(-maxAge-1, 0, 0)
	}
	if len(dobRange) > 0 {
		query["dob"] = dobRange
	}

	params := pagination.Parse(c.Query("page"), c.Query("limit"))

	ctx, cancel := requestContext()
	defer cancel()

	total, err := h.DB.Users.CountDocuments(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}

	findOptions := options.Find().
		SetSkip(params.Skip()).
		SetLimit(int64(params.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.DB.Users.Find(ctx, query, findOptions)
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

	c.JSON(http.StatusOK, pagination.NewResult(users, params, total))
}

// GetUser fetches a profile, counting the view when someone else looks.
func (h *Handler) GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var user models.User
	err = h.DB.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if viewerID != targetID {
		// $inc keeps concurrent views from losing updates; best effort
		if _, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": targetID},
			bson.M{"$inc": bson.M{"profileViews": 1}}); err != nil {
			log.Printf("profile views: increment for %s failed: %v", targetID.Hex(), err)
		} else {
			user.ProfileViews++
		}
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser edits a profile. Only the owner or an admin may do so; the
// password is never updatable through this endpoint.
func (h *Handler) UpdateUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}
	if actor.ID != targetID && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Tribe != "" {
		set["tribe"] = req.Tribe
	}
	if req.Religion != "" {
		set["religion"] = req.Religion
	}
	if req.State != "" {
		set["state"] = req.State
	}
	if len(req.SpokenLanguages) > 0 {
		set["spokenLanguages"] = req.SpokenLanguages
	}
	if req.MaritalIntent != "" {
		set["maritalIntent"] = req.MaritalIntent
	}
	if req.Education != "" {
		set["education"] = req.Education
	}
	if req.EmploymentStatus != "" {
		set["employmentStatus"] = req.EmploymentStatus
	}
	if req.Bio != "" {
		set["bio"] = req.Bio
	}
	if req.Preferences != nil {
		set["preferences"] = req.Preferences
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	var updated models.User
	err = h.DB.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteUser removes an account. Owner or admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}
	if actor.ID != targetID && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		return
	}

	if _, err := h.DB.Users.DeleteOne(ctx, bson.M{"_id": targetID}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// UploadPhoto pushes a profile photo to Cloudinary and stores the URL.
func (h *Handler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	photoFile, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No photo file provided"})
		return
	}
	defer photoFile.Close()

	ctx, cancel := requestContext()
	defer cancel()

	cld, err := cloudinary.NewFromURL(h.CloudinaryURL)
	if err != nil {
		respondError(c, err)
		return
	}

	uploadResult, err := cld.Upload.Upload(ctx, photoFile, uploader.UploadParams{
		Folder:         "heartsync/photos",
		PublicID:       userID.Hex(),
		Transformation: "c_limit,w_800,h_800,q_auto",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload photo"})
		return
	}

	if _, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"profilePhoto": uploadResult.SecureURL}}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": uploadResult.SecureURL})
}

// DashboardStats summarizes the caller's profile performance.
func (h *Handler) DashboardStats(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	totalMatches, err := h.DB.MatchRequests.CountDocuments(ctx, bson.M{
		"status": models.MatchAccepted,
		"$or":    []bson.M{{"from": user.ID}, {"to": user.ID}},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	activeChats, err := h.DB.Chats.CountDocuments(ctx, bson.M{"participants": user.ID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profileViews":   user.ProfileViews,
		"connectionRate": user.ConnectionRate,
		"totalMatches":   totalMatches,
		"activeChats":    activeChats,
	})
}

func intQuery(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
