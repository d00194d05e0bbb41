package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/adamstosho/HeartSyc/middleware"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.JWTAuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(middleware.ContextUserID)})
	})
	return r
}

func signTestToken(secret, userID string, expiresIn time.Duration) string {
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return signed
}

func TestJWTAuthMiddleware(t *testing.T) {
	router := authRouter(testSecret)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing token",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "No token, authorization denied",
		},
		{
			name:       "malformed header",
			header:     "Basic abc123",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid authorization header",
		},
		{
			name:       "garbage token",
			header:     "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token is not valid",
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + signTestToken(testSecret+"x", "u1", time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token is not valid",
		},
		{
			name:       "expired token",
			header:     "Bearer " + signTestToken(testSecret, "u1", -time.Hour),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token is not valid",
		},
		{
			name:       "valid bearer token",
			header:     "Bearer " + signTestToken(testSecret, "user-42", time.Hour),
			wantStatus: http.StatusOK,
			wantBody:   "user-42",
		},
		{
			name:       "valid token via query fallback",
			query:      "?token=" + signTestToken(testSecret, "user-43", time.Hour),
			wantStatus: http.StatusOK,
			wantBody:   "user-43",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestJWTAuthMiddlewareSkipsPreflight(t *testing.T) {
	r := gin.New()
	r.OPTIONS("/protected", middleware.JWTAuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
