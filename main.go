package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/adamstosho/HeartSyc/database"
	"github.com/adamstosho/HeartSyc/handlers"
	"github.com/adamstosho/HeartSyc/routes"
)

func main() {
	log.Println("Starting HeartSync API server...")

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	mongoURI := os.Getenv("MONGODB_URI")
	if jwtSecret == "" || mongoURI == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to MongoDB with a bounded retry
	var store *database.Store
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		store, err = database.Connect(context.Background(), mongoURI)
		if err == nil {
			break
		}
		log.Printf("MongoDB connection attempt %d failed: %v", attempt, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal("Failed to create indexes: ", err)
	}
	cancel()

	h := handlers.New(store, jwtSecret)
	h.CloudinaryURL = os.Getenv("CLOUDINARY_URL")
	h.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	h.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	h.VAPIDSubscriber = os.Getenv("VAPID_EMAIL")

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	router := routes.SetupRouter(h, origins)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}
	if err := store.Disconnect(context.Background()); err != nil {
		log.Println("Mongo disconnect: ", err)
	}

	log.Println("Server stopped gracefully")
}
