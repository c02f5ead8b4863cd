// main.go
package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"hackhub/database"
	"hackhub/handlers"
	"hackhub/handlers/admin"
	"hackhub/middleware"
	"hackhub/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire hackathon services into the handlers
	handlers.InitHackathonHandlers()

	// Background invite expiry
	services.InitCleanupService(database.GetDB())
	defer func() {
		if cleanup := services.GetCleanupService(); cleanup != nil {
			cleanup.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Put("/me", handlers.UpdateCurrentUser)
	userGroup.Get("/:id", handlers.GetUserProfile)

	// Hackathon routes
	hackGroup := api.Group("/hackathon")
	hackGroup.Use(middleware.AuthMiddleware)
	hackGroup.Get("/", handlers.GetCurrentHackathon)

	// Pool
	hackGroup.Get("/pool", handlers.GetPool)
	hackGroup.Post("/pool/join", handlers.JoinPool)
	hackGroup.Post("/pool/leave", handlers.LeavePool)

	// Teams
	hackGroup.Get("/team", handlers.GetMyTeam)
	hackGroup.Get("/teams/open", handlers.GetOpenTeams)
	hackGroup.Get("/teams/:id", handlers.GetTeam)
	hackGroup.Put("/teams/:id", handlers.UpdateTeam)
	hackGroup.Post("/teams/:id/leave", handlers.LeaveTeam)
	hackGroup.Get("/teams/:id/requests", handlers.GetTeamRequests)

	// Invites
	hackGroup.Post("/invites", handlers.SendInvite)
	hackGroup.Get("/invites", handlers.GetMyInvites)
	hackGroup.Post("/invites/:id/accept", handlers.AcceptInvite)
	hackGroup.Post("/invites/:id/decline", handlers.DeclineInvite)

	// Join requests
	hackGroup.Post("/requests", handlers.SendJoinRequest)
	hackGroup.Get("/requests/mine", handlers.GetMyJoinRequest)
	hackGroup.Post("/requests/:id/accept", handlers.AcceptJoinRequest)
	hackGroup.Post("/requests/:id/decline", handlers.DeclineJoinRequest)

	// Submission
	hackGroup.Get("/submission", handlers.GetMySubmission)
	hackGroup.Post("/submission/register", handlers.RegisterSubmission)
	hackGroup.Post("/submission/submit", handlers.SubmitSubmission)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Get("/users", admin.GetUsers)
	adminGroup.Get("/users/:id", admin.GetUser)
	adminGroup.Post("/users/:id/ban", admin.BanUser)
	adminGroup.Post("/users/:id/unban", admin.UnbanUser)
	adminGroup.Post("/hackathon/users/:id/clear-lockout", admin.ClearLockout)
	adminGroup.Get("/hackathon/submissions", admin.ListSubmissions)
	adminGroup.Post("/hackathon/teams/:id/disqualify", admin.DisqualifyTeam)
	adminGroup.Post("/hackathon/teams/:id/win", admin.AwardWin)

	port := getEnv("PORT", "8080")
	log.Printf("🚀 HackHub listening on :%s", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
