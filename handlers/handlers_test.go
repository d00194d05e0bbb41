package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/adamstosho/HeartSyc/database"
	"github.com/adamstosho/HeartSyc/handlers"
	"github.com/adamstosho/HeartSyc/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mockDeployment(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func testHandler(mt *mtest.T) *handlers.Handler {
	store := &database.Store{
		Users:         mt.DB.Collection("users"),
		MatchRequests: mt.DB.Collection("matchrequests"),
		Chats:         mt.DB.Collection("chats"),
		Reports:       mt.DB.Collection("reports"),
		PushSubs:      mt.DB.Collection("push_subscriptions"),
	}
	return handlers.New(store, "test-secret")
}

// testContext builds a gin context carrying an authenticated caller and
// optional route params, the way the middleware chain would.
func testContext(userID primitive.ObjectID, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set(middleware.ContextUserID, userID.Hex())
	c.Params = params
	return c, w
}
