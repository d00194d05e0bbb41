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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adamstosho/HeartSyc/matching"
	"github.com/adamstosho/HeartSyc/models"
)

// GetSuggestions runs the compatibility filter over every verified,
// unbanned user except the viewer. O(N) per call, unpaginated.
func (h *Handler) GetSuggestions(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	viewer, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	cursor, err := h.DB.Users.Find(ctx, bson.M{
		"_id":        bson.M{"$ne": viewer.ID},
		"isBanned":   false,
		"isVerified": true,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var candidates []models.User
	if err := cursor.All(ctx, &candidates); err != nil {
		respondError(c, err)
		return
	}

	suggestions := []models.User{}
	for i := range candidates {
		if matching.IsCompatible(viewer, &candidates[i]) {
			suggestions = append(suggestions, candidates[i])
		}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// SendRequest creates a pending match request toward the target user.
func (h *Handler) SendRequest(c *gin.Context) {
	to, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	from, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := matching.ValidateNewRequest(from, to); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	count, err := h.DB.Users.CountDocuments(ctx, bson.M{"_id": to})
	if err != nil {
		respondError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	existing, err := h.DB.MatchRequests.CountDocuments(ctx, bson.M{"from": from, "to": to})
	if err != nil {
		respondError(c, err)
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Request already sent"})
		return
	}

	request := models.MatchRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    models.MatchPending,
		CreatedAt: time.Now(),
	}
	if _, err := h.DB.MatchRequests.InsertOne(ctx, request); err != nil {
		// unique (from, to) index closes the check-then-insert race
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Request already sent"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Match request sent"})
}

// AcceptRequest moves a pending request to accepted, makes sure the chat
// thread exists and recomputes both users' connection rates.
func (h *Handler) AcceptRequest(c *gin.Context) {
	h.resolveRequest(c, models.MatchAccepted)
}

// RejectRequest moves a pending request to rejected. No side effects.
func (h *Handler) RejectRequest(c *gin.Context) {
	h.resolveRequest(c, models.MatchRejected)
}

func (h *Handler) resolveRequest(c *gin.Context, target string) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request ID"})
		return
	}

	actor, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	var request models.MatchRequest
	err = h.DB.MatchRequests.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	apply, err := matching.CanResolve(&request, actor, target)
	if err != nil {
		respondError(c, err)
		return
	}

	if apply {
		// the pending filter serializes concurrent resolutions; once a
		// request leaves pending its status never changes again
		result, err := h.DB.MatchRequests.UpdateOne(ctx,
			bson.M{"_id": request.ID, "status": models.MatchPending},
			bson.M{"$set": bson.M{"status": target}})
		if err != nil {
			respondError(c, err)
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"message": "Request already resolved"})
			return
		}
		request.Status = target
	}

	if target == models.MatchAccepted {
		// Re-running accept must not duplicate the chat
		if _, err := h.ensureChat(ctx, &request); err != nil {
			respondError(c, err)
			return
		}
		if apply {
			h.recomputeConnectionRates(ctx, request.From, request.To)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Match request accepted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match request rejected"})
}

// GetReceivedRequests lists pending requests addressed to the caller,
// newest first, with the sender expanded.
func (h *Handler) GetReceivedRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	requests, err := h.findRequests(ctx, bson.M{"to": userID, "status": models.MatchPending})
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := h.populateRequests(ctx, requests, true, false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": views})
}

// GetSentRequests lists every request the caller originated, newest first,
// with the recipient expanded.
func (h *Handler) GetSentRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	requests, err := h.findRequests(ctx, bson.M{"from": userID})
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := h.populateRequests(ctx, requests, false, true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": views})
}

// GetMatchedRequests lists accepted requests involving the caller, newest
// first, with both endpoints expanded.
func (h *Handler) GetMatchedRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	requests, err := h.findRequests(ctx, bson.M{
		"status": models.MatchAccepted,
		"$or":    []bson.M{{"from": userID}, {"to": userID}},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := h.populateRequests(ctx, requests, true, true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matched": views})
}

func (h *Handler) findRequests(ctx context.Context, query bson.M) ([]models.MatchRequest, error) {
	cursor, err := h.DB.MatchRequests.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.MatchRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// matchRequestView is the composed read shape: endpoints expanded to user
// documents where requested, left as hex ids otherwise.
type matchRequestView struct {
	ID        string      `json:"id"`
	From      interface{} `json:"from"`
	To        interface{} `json:"to"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (h *Handler) populateRequests(ctx context.Context, requests []models.MatchRequest, expandFrom, expandTo bool) ([]matchRequestView, error) {
	ids := make([]primitive.ObjectID, 0, len(requests)*2)
	for _, r := range requests {
		if expandFrom {
			ids = append(ids, r.From)
		}
		if expandTo {
			ids = append(ids, r.To)
		}
	}

	users, err := h.fetchUserMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]matchRequestView, len(requests))
	for i, r := range requests {
		view := matchRequestView{
			ID:        r.ID.Hex(),
			From:      r.From.Hex(),
			To:        r.To.Hex(),
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		}
		if expandFrom {
			if u, ok := users[r.From]; ok {
				view.From = u
			}
		}
		if expandTo {
			if u, ok := users[r.To]; ok {
				view.To = u
			}
		}
		views[i] = view
	}
	return views, nil
}

// ensureChat creates the chat for an accepted match if it does not exist
// yet. The upsert plus the unique matchId index make concurrent callers
// converge on a single document.
func (h *Handler) ensureChat(ctx context.Context, request *models.MatchRequest) (*models.Chat, error) {
	var chat models.Chat
	err := h.DB.Chats.FindOneAndUpdate(ctx,
		bson.M{"matchId": request.ID},
		bson.M{"$setOnInsert": bson.M{
			"matchId":      request.ID,
			"participants": []primitive.ObjectID{request.From, request.To},
			"messages":     []models.Message{},
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// recomputeConnectionRates refreshes the derived statistic for both ends
// of an accepted match. Best effort: failures are logged, never surfaced.
func (h *Handler) recomputeConnectionRates(ctx context.Context, userIDs ...primitive.ObjectID) {
	for _, userID := range userIDs {
		accepted, err := h.DB.MatchRequests.CountDocuments(ctx, bson.M{
			"status": models.MatchAccepted,
			"$or":    []bson.M{{"from": userID}, {"to": userID}},
		})
		if err != nil {
			log.Printf("connection rate: count for %s failed: %v", userID.Hex(), err)
			continue
		}

		var user models.User
		if err := h.DB.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Printf("connection rate: load %s failed: %v", userID.Hex(), err)
			continue
		}

		rate := matching.ConnectionRate(accepted, user.ProfileViews)
		if _, err := h.DB.Users.UpdateOne(ctx, bson.M{"_id": userID},
			bson.M{"$set": bson.M{"connectionRate": rate}}); err != nil {
			log.Printf("connection rate: update %s failed: %v", userID.Hex(), err)
		}
	}
}
