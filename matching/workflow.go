package matching

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adamstosho/HeartSyc/apperrors"
	"github.com/adamstosho/HeartSyc/models"
)

// ValidateNewRequest checks that a match request may be created at all.
// The mirror pair (to, from) is deliberately not checked: both directions
// may hold pending requests at the same time.
func ValidateNewRequest(from, to primitive.ObjectID) error {
	if from == to {
		return apperrors.Validation("Cannot match with yourself")
	}
	return nil
}

// CanResolve decides whether actor may move the request to target status
// (accepted or rejected). Only the recipient may resolve a request.
//
// Repeating the transition the request already took is an idempotent no-op:
// apply is false and err is nil. Crossing from one terminal status to the
// other is a conflict.
func CanResolve(req *models.MatchRequest, actor primitive.ObjectID, target string) (apply bool, err error) {
	if req.To != actor {
		return false, apperrors.Authorization("Not authorized")
	}
	if req.Status == target {
		return false, nil
	}
	if req.Resolved() {
		return false, apperrors.Conflict("Request already " + req.Status)
	}
	return true, nil
}
