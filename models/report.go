package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a pure audit record: written once by the reporter, listed by admins.
type Report struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reporter  primitive.ObjectID `bson:"reporter" json:"reporter"`
	Reported  primitive.ObjectID `bson:"reported" json:"reported"`
	Reason    string             `bson:"reason" json:"reason"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
