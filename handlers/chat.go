package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adamstosho/HeartSyc/apperrors"
	"github.com/adamstosho/HeartSyc/models"
)

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// chatParticipant is the slim view of a chat partner.
type chatParticipant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
	State        string `json:"state,omitempty"`
}

type chatView struct {
	ID           string            `json:"id"`
	MatchID      string            `json:"matchId"`
	Participants []chatParticipant `json:"participants"`
	Messages     []models.Message  `json:"messages"`
}

// GetChat returns the chat for an accepted match, creating it lazily on
// first access. A chat exists iff its match request is accepted.
func (h *Handler) GetChat(c *gin.Context) {
	matchID, err := primitive.ObjectIDFromHex(c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	chat, err := h.chatForParticipant(ctx, matchID, userID, apperrors.NotFound("Chat not found"))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.buildChatView(ctx, chat)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SendMessage appends to the thread of an accepted match. The new message
// starts unread for everyone but the sender.
func (h *Handler) SendMessage(c *gin.Context) {
	matchID, err := primitive.ObjectIDFromHex(c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	chat, err := h.chatForParticipant(ctx, matchID, userID, apperrors.Authorization("No accepted match"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := models.NewMessage(userID, req.Content, chat.Participants)
	var updated models.Chat
	err = h.DB.Chats.FindOneAndUpdate(ctx,
		bson.M{"_id": chat.ID},
		bson.M{"$push": bson.M{"messages": message}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyParticipants(&updated, userID, req.Content)

	view, err := h.buildChatView(ctx, &updated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// MarkAsRead clears the caller from every message's unread set. Calling
// it on an already-read chat succeeds silently.
func (h *Handler) MarkAsRead(c *gin.Context) {
	matchID, err := primitive.ObjectIDFromHex(c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := h.DB.Chats.UpdateOne(ctx,
		bson.M{"matchId": matchID, "participants": userID},
		bson.M{"$pull": bson.M{"messages.$[].unreadBy": userID}})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// conversationView is a chat plus the caller's unread tally.
type conversationView struct {
	models.Chat
	UnreadCount int `json:"unreadCount"`
}

// GetConversations lists the caller's chats, most recently active first,
// each carrying that caller's unread message count.
func (h *Handler) GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	cursor, err := h.DB.Chats.Find(ctx, bson.M{"participants": userID})
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		respondError(c, err)
		return
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMessageAt().After(chats[j].LastMessageAt())
	})

	views := make([]conversationView, len(chats))
	for i := range chats {
		views[i] = conversationView{
			Chat:        chats[i],
			UnreadCount: chats[i].UnreadCountFor(userID),
		}
	}

	c.JSON(http.StatusOK, views)
}

// chatForParticipant fetches the chat for matchID on behalf of userID.
// When the chat does not exist yet it is created, provided the match is
// accepted and the user is one of its endpoints. noMatch is returned when
// there is no accepted match at all: reads treat that as a missing chat,
// writes as an authorization failure.
func (h *Handler) chatForParticipant(ctx context.Context, matchID, userID primitive.ObjectID, noMatch *apperrors.AppError) (*models.Chat, error) {
	var chat models.Chat
	err := h.DB.Chats.FindOne(ctx, bson.M{"matchId": matchID}).Decode(&chat)
	if err == nil {
		if !chat.HasParticipant(userID) {
			return nil, apperrors.Authorization("Not authorized")
		}
		return &chat, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	var match models.MatchRequest
	err = h.DB.MatchRequests.FindOne(ctx, bson.M{"_id": matchID, "status": models.MatchAccepted}).Decode(&match)
	if err == mongo.ErrNoDocuments {
		return nil, noMatch
	}
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, apperrors.Authorization("Not authorized")
	}

	return h.ensureChat(ctx, &match)
}

func (h *Handler) buildChatView(ctx context.Context, chat *models.Chat) (*chatView, error) {
	users, err := h.fetchUserMap(ctx, chat.Participants)
	if err != nil {
		return nil, err
	}

	participants := make([]chatParticipant, 0, len(chat.Participants))
	for _, id := range chat.Participants {
		p := chatParticipant{ID: id.Hex()}
		if u, ok := users[id]; ok {
			p.Name = u.Name
			p.ProfilePhoto = u.ProfilePhoto
			p.State = u.State
		}
		participants = append(participants, p)
	}

	messages := chat.Messages
	if messages == nil {
		messages = []models.Message{}
	}

	return &chatView{
		ID:           chat.ID.Hex(),
		MatchID:      chat.MatchID.Hex(),
		Participants: participants,
		Messages:     messages,
	}, nil
}
