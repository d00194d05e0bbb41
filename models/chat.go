package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is immutable once appended; only UnreadBy shrinks as
// participants mark the chat read.
type Message struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Sender    primitive.ObjectID   `bson:"sender" json:"sender"`
	Content   string               `bson:"content" json:"content"`
	Timestamp time.Time            `bson:"timestamp" json:"timestamp"`
	UnreadBy  []primitive.ObjectID `bson:"unreadBy" json:"unreadBy"`
}

// Chat is the message thread of one accepted match. MatchID is unique
// across the collection, so concurrent create attempts collapse into one.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	MatchID      primitive.ObjectID   `bson:"matchId" json:"matchId"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []Message            `bson:"messages" json:"messages"`
}

// NewMessage builds a message marked unread for every participant except the sender.
func NewMessage(sender primitive.ObjectID, content string, participants []primitive.ObjectID) Message {
	unreadBy := make([]primitive.ObjectID, 0, len(participants))
	for _, p := range participants {
		if p != sender {
			unreadBy = append(unreadBy, p)
		}
	}
	return Message{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
		UnreadBy:  unreadBy,
	}
}

// LastMessageAt returns the timestamp of the newest message, or the zero
// time for an empty chat.
func (c *Chat) LastMessageAt() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[len(c.Messages)-1].Timestamp
}

// UnreadCountFor counts the messages the user has not read yet.
func (c *Chat) UnreadCountFor(userID primitive.ObjectID) int {
	count := 0
	for _, msg := range c.Messages {
		for _, id := range msg.UnreadBy {
			if id == userID {
				count++
				break
			}
		}
	}
	return count
}

// HasParticipant reports whether the user belongs to the chat.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
