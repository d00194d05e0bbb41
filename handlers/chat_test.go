package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMarkAsRead(t *testing.T) {
	mt := mockDeployment(t)

	matchID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	mt.Run("pulls the caller from every unread set", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		h := testHandler(mt)
		c, w := testContext(userID, gin.Param{Key: "matchId", Value: matchID.Hex()})
		h.MarkAsRead(c)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), `"success":true`)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "update", ev.CommandName)
		assert.Contains(mt, ev.Command.String(), "$pull")
		assert.Contains(mt, ev.Command.String(), "messages.$[].unreadBy")
	})

	mt.Run("already-read chat is a silent no-op", func(mt *mtest.T) {
		// the chat matches but no message still lists the caller
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		h := testHandler(mt)
		c, w := testContext(userID, gin.Param{Key: "matchId", Value: matchID.Hex()})
		h.MarkAsRead(c)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), `"success":true`)
	})

	mt.Run("unknown chat is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		h := testHandler(mt)
		c, w := testContext(userID, gin.Param{Key: "matchId", Value: matchID.Hex()})
		h.MarkAsRead(c)

		assert.Equal(mt, http.StatusNotFound, w.Code)
		assert.Contains(mt, w.Body.String(), "Chat not found")
	})
}

func TestGetConversations(t *testing.T) {
	mt := mockDeployment(t)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	chatDoc := func(matchID primitive.ObjectID, messages bson.A) bson.D {
		return bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "matchId", Value: matchID},
			{Key: "participants", Value: bson.A{alice, bob}},
			{Key: "messages", Value: messages},
		}
	}
	messageDoc := func(sender primitive.ObjectID, at time.Time, unreadBy bson.A) bson.D {
		return bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "sender", Value: sender},
			{Key: "content", Value: "hi"},
			{Key: "timestamp", Value: at},
			{Key: "unreadBy", Value: unreadBy},
		}
	}

	mt.Run("carries the caller's unread count", func(mt *mtest.T) {
		now := time.Now()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "heartsync.chats", mtest.FirstBatch,
			chatDoc(primitive.NewObjectID(), bson.A{
				messageDoc(bob, now, bson.A{alice}),
				messageDoc(bob, now.Add(time.Minute), bson.A{alice}),
				messageDoc(alice, now.Add(2*time.Minute), bson.A{bob}),
			}),
		))

		h := testHandler(mt)
		c, w := testContext(alice)
		h.GetConversations(c)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), `"unreadCount":2`)
	})

	mt.Run("no chats yields an empty list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "heartsync.chats", mtest.FirstBatch))

		h := testHandler(mt)
		c, w := testContext(alice)
		h.GetConversations(c)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Equal(mt, "[]", w.Body.String())
	})
}
