package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adamstosho/HeartSyc/models"
)

// GetVapidPublicKey hands the browser the key it needs to subscribe.
func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.VAPIDPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}

// SubscribePush stores the caller's web-push subscription, one per user.
func (h *Handler) SubscribePush(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil || sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid subscription"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	_, err := h.DB.PushSubs.ReplaceOne(ctx,
		bson.M{"userId": userID},
		models.PushSubscription{UserID: userID, Sub: sub},
		options.Replace().SetUpsert(true))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// notifyParticipants pushes a new-message notification to everyone in the
// chat but the sender. Best effort, runs off the request path.
func (h *Handler) notifyParticipants(chat *models.Chat, sender primitive.ObjectID, content string) {
	if h.VAPIDPrivateKey == "" {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("push notification panic: %v", r)
			}
		}()

		ctx, cancel := requestContext()
		defer cancel()

		var senderUser models.User
		_ = h.DB.Users.FindOne(ctx, bson.M{"_id": sender}).Decode(&senderUser)

		payload, _ := json.Marshal(map[string]string{
			"title": senderUser.Name + " sent you a message",
			"body":  content,
		})

		for _, participantID := range chat.Participants {
			if participantID == sender {
				continue
			}

			var sub models.PushSubscription
			err := h.DB.PushSubs.FindOne(ctx, bson.M{"userId": participantID}).Decode(&sub)
			if err == mongo.ErrNoDocuments {
				continue
			}
			if err != nil {
				log.Printf("push subscription lookup failed: %v", err)
				continue
			}

			resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
				Subscriber:      h.VAPIDSubscriber,
				VAPIDPublicKey:  h.VAPIDPublicKey,
				VAPIDPrivateKey: h.VAPIDPrivateKey,
				TTL:             30,
			})
			if err != nil {
				log.Printf("push send failed: %v", err)
				continue
			}
			resp.Body.Close()
		}
	}()
}
