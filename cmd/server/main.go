package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/database"
	"github.com/techcompass/tech-compass/internal/handlers"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"

	_ "github.com/techcompass/tech-compass/docs/api" // Swagger docs
)

// @title Tech Compass API
// @version 1.0.0
// @description Catalog service for internal technology solutions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/techcompass/tech-compass

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire services
	history := services.NewHistoryService(db)
	categories := services.NewCategoryService(db, history, cfg.CategoryCacheTTL)
	tags := services.NewTagService(db, history)
	solutions := services.NewSolutionService(db, categories, tags, history)
	ratings := services.NewRatingService(db, solutions)
	comments := services.NewCommentService(db, solutions)
	site := services.NewSiteService(db, history)
	auth := services.NewAuthService(db, cfg, history)
	users := services.NewUserService(db, cfg, history)

	// Seed the reserved admin account
	if err := auth.EnsureBootstrapAdmin(); err != nil {
		log.Fatalf("Failed to ensure bootstrap admin: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("tech_compass")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	healthHandler := &handlers.HealthHandler{Config: cfg, DB: db}
	authHandler := &handlers.AuthHandler{Auth: auth}
	categoryHandler := &handlers.CategoryHandler{Categories: categories}
	tagHandler := &handlers.TagHandler{Tags: tags}
	solutionHandler := &handlers.SolutionHandler{Solutions: solutions, History: history}
	ratingHandler := &handlers.RatingHandler{Ratings: ratings}
	commentHandler := &handlers.CommentHandler{Comments: comments}
	userHandler := &handlers.UserHandler{Users: users}
	siteHandler := &handlers.SiteHandler{Site: site}
	historyHandler := &handlers.HistoryHandler{History: history}

	app.Get("/health", healthHandler.Check)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	requireUser := middleware.RequireUser(auth)
	requireSuperuser := middleware.RequireSuperuser(auth)

	// Authentication
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", requireUser, authHandler.Me)

	// Solutions (public reads, authenticated writes)
	sol := api.Group("/solutions")
	sol.Get("/", solutionHandler.List)
	sol.Get("/search", solutionHandler.Search)
	sol.Get("/departments", solutionHandler.Departments)
	sol.Get("/check-name/:name", solutionHandler.CheckName)
	sol.Get("/my", requireUser, solutionHandler.My)
	sol.Post("/", requireUser, solutionHandler.Create)
	sol.Get("/:slug", solutionHandler.Get)
	sol.Put("/:slug", requireUser, solutionHandler.Update)
	sol.Delete("/:slug", requireUser, solutionHandler.Delete)
	sol.Get("/:slug/history", solutionHandler.SolutionHistory)
	sol.Get("/:slug/adopted-users", solutionHandler.AdoptedUsers)
	sol.Post("/:slug/adopted-users", requireUser, solutionHandler.Adopt)
	sol.Post("/:slug/tag/:name", requireUser, solutionHandler.AddTag)
	sol.Delete("/:slug/tag/:name", requireUser, solutionHandler.RemoveTag)

	// Ratings and comments nested under solutions
	sol.Get("/:slug/ratings", ratingHandler.ListForSolution)
	sol.Get("/:slug/ratings/summary", ratingHandler.Summary)
	sol.Post("/:slug/ratings", requireUser, ratingHandler.Upsert)
	sol.Get("/:slug/comments", commentHandler.ListForSolution)
	sol.Post("/:slug/comments", requireUser, commentHandler.Create)

	api.Get("/ratings/my", requireUser, ratingHandler.My)
	api.Put("/ratings/:id", requireUser, ratingHandler.Update)
	api.Delete("/ratings/:id", requireUser, ratingHandler.Delete)

	api.Get("/comments/my", requireUser, commentHandler.My)
	api.Put("/comments/:id", requireUser, commentHandler.Update)
	api.Delete("/comments/:id", requireUser, commentHandler.Delete)

	// Categories (public reads, superuser writes)
	cat := api.Group("/categories")
	cat.Get("/", categoryHandler.List)
	cat.Get("/:id", categoryHandler.Get)
	cat.Post("/", requireSuperuser, categoryHandler.Create)
	cat.Put("/:id", requireSuperuser, categoryHandler.Update)
	cat.Delete("/:id", requireSuperuser, categoryHandler.Delete)

	// Tags (public reads, superuser writes)
	tag := api.Group("/tags")
	tag.Get("/", tagHandler.List)
	tag.Get("/:name", tagHandler.GetByName)
	tag.Post("/", requireSuperuser, tagHandler.Create)
	tag.Put("/:id", requireSuperuser, tagHandler.Update)
	tag.Delete("/:id", requireSuperuser, tagHandler.Delete)

	// Users
	usr := api.Group("/users")
	usr.Get("/", requireSuperuser, userHandler.List)
	usr.Post("/", requireSuperuser, userHandler.Create)
	usr.Post("/me/password", requireUser, userHandler.ChangePassword)
	usr.Get("/:username", requireUser, userHandler.Get)
	usr.Put("/:username", requireUser, userHandler.Update)
	usr.Delete("/:username", requireUser, userHandler.Delete)

	// Site configuration (public read, superuser writes)
	api.Get("/site", siteHandler.Get)
	api.Post("/site", requireUser, siteHandler.Create)
	api.Put("/site", requireUser, siteHandler.Update)
	api.Post("/site/reset", requireUser, siteHandler.Reset)

	// Audit trail
	api.Get("/history", requireUser, historyHandler.List)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
