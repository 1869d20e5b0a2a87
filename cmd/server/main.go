package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"fichas/internal/auth"
	"fichas/internal/database"
	"fichas/internal/handlers"
	"fichas/internal/ratelimit"
	"fichas/internal/services"
	"fichas/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// This is our main function - the entry point of our application
func main() {
	// Load .env in development; production sets real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Wire up services
	emailService := services.NewEmailService()

	var mailPool *services.MailWorker
	asyncEmail := os.Getenv("EMAIL_ASYNC") == "true" || os.Getenv("EMAIL_ASYNC") == "1"
	if asyncEmail {
		mailPool = services.NewMailWorker(emailService, intEnv("EMAIL_WORKERS", 2), intEnv("EMAIL_QUEUE_SIZE", 32))
		mailPool.Start()
		defer mailPool.Stop()
	}

	photoService, err := services.NewPhotoService()
	if err != nil {
		log.Printf("Photo uploads disabled: %v", err)
	}

	handlers.Init(handlers.Deps{
		Alumnos:    store.NewAlumnoStore(database.GetDB()),
		Email:      emailService,
		PDF:        services.NewPDFService(),
		Photos:     photoService,
		Scraper:    services.NewScrapeService(),
		SendGate:   ratelimit.NewCooldown(ratelimit.DefaultSendWindow),
		MailPool:   mailPool,
		AsyncEmail: asyncEmail,
	})

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// Allow the frontend origin when configured
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(corsConfig))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.POST("/auth/login", handlers.Login)

	// Account routes (no auth required)
	router.POST("/accounts", handlers.CreateAccount)

	// Public search route; result emailing kicks in only with a session
	router.POST("/search", handlers.Search)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/auth/me", handlers.GetCurrentUser)

		protected.GET("/alumnos", handlers.ListAlumnos)
		protected.POST("/alumnos", handlers.CreateAlumno)
		protected.POST("/alumnos/:id/send-pdf", handlers.SendAlumnoPDF)
		protected.POST("/alumnos/:id/photo", handlers.UploadAlumnoPhoto)

		protected.POST("/email/test", handlers.SendTestEmail)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s, using %d", key, fallback)
	}
	return fallback
}
