package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MatchPending  = "pending"
	MatchAccepted = "accepted"
	MatchRejected = "rejected"
)

// MatchRequest is a directional edge: created by From, resolved by To.
// At most one request exists per ordered (from, to) pair.
type MatchRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Involves reports whether the user is either endpoint of the request.
func (m *MatchRequest) Involves(userID primitive.ObjectID) bool {
	return m.From == userID || m.To == userID
}

// Resolved reports whether the request has reached a terminal status.
func (m *MatchRequest) Resolved() bool {
	return m.Status != MatchPending
}
