package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adamstosho/HeartSyc/apperrors"
	"github.com/adamstosho/HeartSyc/matching"
	"github.com/adamstosho/HeartSyc/models"
)

func TestValidateNewRequest(t *testing.T) {
	from := primitive.NewObjectID()
	to := primitive.NewObjectID()

	assert.NoError(t, matching.ValidateNewRequest(from, to))

	err := matching.ValidateNewRequest(from, from)
	require.Error(t, err)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestCanResolve(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	tests := []struct {
		name      string
		status    string
		actor     primitive.ObjectID
		target    string
		wantApply bool
		wantCode  apperrors.Code
	}{
		{
			name:      "recipient accepts pending",
			status:    models.MatchPending,
			actor:     recipient,
			target:    models.MatchAccepted,
			wantApply: true,
		},
		{
			name:      "recipient rejects pending",
			status:    models.MatchPending,
			actor:     recipient,
			target:    models.MatchRejected,
			wantApply: true,
		},
		{
			name:     "sender cannot resolve own request",
			status:   models.MatchPending,
			actor:    sender,
			target:   models.MatchAccepted,
			wantCode: apperrors.CodeAuthorization,
		},
		{
			name:     "stranger cannot resolve",
			status:   models.MatchPending,
			actor:    stranger,
			target:   models.MatchAccepted,
			wantCode: apperrors.CodeAuthorization,
		},
		{
			name:      "accepting twice is a no-op",
			status:    models.MatchAccepted,
			actor:     recipient,
			target:    models.MatchAccepted,
			wantApply: false,
		},
		{
			name:      "rejecting twice is a no-op",
			status:    models.MatchRejected,
			actor:     recipient,
			target:    models.MatchRejected,
			wantApply: false,
		},
		{
			name:     "accepted cannot become rejected",
			status:   models.MatchAccepted,
			actor:    recipient,
			target:   models.MatchRejected,
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "rejected cannot become accepted",
			status:   models.MatchRejected,
			actor:    recipient,
			target:   models.MatchAccepted,
			wantCode: apperrors.CodeConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := &models.MatchRequest{From: sender, To: recipient, Status: tc.status}

			apply, err := matching.CanResolve(req, tc.actor, tc.target)
			if tc.wantCode != "" {
				require.Error(t, err)
				appErr := apperrors.As(err)
				require.NotNil(t, appErr)
				assert.Equal(t, tc.wantCode, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantApply, apply)
		})
	}
}
