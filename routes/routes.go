package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adamstosho/HeartSyc/handlers"
	"github.com/adamstosho/HeartSyc/middleware"
)

// SetupRouter wires every endpoint. The handler carries the store and the
// config; nothing here touches globals.
func SetupRouter(h *handlers.Handler, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Public routes; rate-limited to slow down credential stuffing
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware(30, time.Minute))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	router.GET("/api/vapid-public-key", h.GetVapidPublicKey)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(h.JWTSecret))

	protected.GET("/auth/me", h.Me)

	// Users
	protected.GET("/users", h.FilterUsers)
	protected.GET("/users/me/dashboard-stats", h.DashboardStats)
	protected.POST("/users/me/photo", h.UploadPhoto)
	protected.GET("/users/:id", h.GetUser)
	protected.PUT("/users/:id", h.UpdateUser)
	protected.DELETE("/users/:id", h.DeleteUser)

	// Match workflow
	protected.GET("/match/suggestions", h.GetSuggestions)
	protected.POST("/match/request/:userId", h.SendRequest)
	protected.POST("/match/accept/:requestId", h.AcceptRequest)
	protected.POST("/match/reject/:requestId", h.RejectRequest)
	protected.GET("/match/received", h.GetReceivedRequests)
	protected.GET("/match/sent", h.GetSentRequests)
	protected.GET("/match/matched", h.GetMatchedRequests)

	// Chat (polled; no realtime transport)
	protected.GET("/chat/conversations", h.GetConversations)
	protected.GET("/chat/:matchId", h.GetChat)
	protected.POST("/chat/:matchId", h.SendMessage)
	protected.POST("/chat/:matchId/read", h.MarkAsRead)

	// Push subscriptions
	protected.POST("/push/subscribe", h.SubscribePush)

	// Admin; reporting stays open to every authenticated user
	admin := protected.Group("/admin")
	admin.POST("/report-user/:id", h.ReportUser)

	adminOnly := admin.Group("")
	adminOnly.Use(middleware.AdminRequired(h.DB))
	adminOnly.GET("/users", h.GetAllUsers)
	adminOnly.POST("/verify-user/:id", h.VerifyUser)
	adminOnly.POST("/ban-user/:id", h.BanUser)
	adminOnly.POST("/unban-user/:id", h.UnbanUser)
	adminOnly.DELETE("/delete-user/:id", h.AdminDeleteUser)
	adminOnly.GET("/reports", h.GetReports)
	adminOnly.GET("/stats", h.GetAdminStats)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return router
}
