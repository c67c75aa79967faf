package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv bundles the in-process app with direct access to the database and
// the auth service for seeding and token minting.
type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	cfg  *config.Config
	auth *services.AuthService
}

// newTestEnv builds the full route table over an in-memory database, wired
// the same way the server binary wires it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Tag{}, &models.Solution{},
		&models.Rating{}, &models.Comment{}, &models.HistoryRecord{}, &models.SiteConfig{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:         "handler-test-secret",
		AccessTokenExpire: time.Hour,
		TokenIssuer:       "tech-compass-test",
		AdminUsername:     "admin",
		AdminPassword:     "admin-password",
		AuthServerTimeout: time.Second,
	}

	history := services.NewHistoryService(db)
	categories := services.NewCategoryService(db, history, 0)
	tags := services.NewTagService(db, history)
	solutions := services.NewSolutionService(db, categories, tags, history)
	ratings := services.NewRatingService(db, solutions)
	comments := services.NewCommentService(db, solutions)
	site := services.NewSiteService(db, history)
	auth := services.NewAuthService(db, cfg, history)
	users := services.NewUserService(db, cfg, history)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	authHandler := &AuthHandler{Auth: auth}
	categoryHandler := &CategoryHandler{Categories: categories}
	tagHandler := &TagHandler{Tags: tags}
	solutionHandler := &SolutionHandler{Solutions: solutions, History: history}
	ratingHandler := &RatingHandler{Ratings: ratings}
	commentHandler := &CommentHandler{Comments: comments}
	userHandler := &UserHandler{Users: users}
	siteHandler := &SiteHandler{Site: site}
	historyHandler := &HistoryHandler{History: history}

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	requireUser := middleware.RequireUser(auth)
	requireSuperuser := middleware.RequireSuperuser(auth)

	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", requireUser, authHandler.Me)

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

	cat := api.Group("/categories")
	cat.Get("/", categoryHandler.List)
	cat.Get("/:id", categoryHandler.Get)
	cat.Post("/", requireSuperuser, categoryHandler.Create)
	cat.Put("/:id", requireSuperuser, categoryHandler.Update)
	cat.Delete("/:id", requireSuperuser, categoryHandler.Delete)

	tag := api.Group("/tags")
	tag.Get("/", tagHandler.List)
	tag.Get("/:name", tagHandler.GetByName)
	tag.Post("/", requireSuperuser, tagHandler.Create)
	tag.Put("/:id", requireSuperuser, tagHandler.Update)
	tag.Delete("/:id", requireSuperuser, tagHandler.Delete)

	usr := api.Group("/users")
	usr.Get("/", requireSuperuser, userHandler.List)
	usr.Post("/", requireSuperuser, userHandler.Create)
	usr.Post("/me/password", requireUser, userHandler.ChangePassword)
	usr.Get("/:username", requireUser, userHandler.Get)
	usr.Put("/:username", requireUser, userHandler.Update)
	usr.Delete("/:username", requireUser, userHandler.Delete)

	api.Get("/site", siteHandler.Get)
	api.Post("/site", requireUser, siteHandler.Create)
	api.Put("/site", requireUser, siteHandler.Update)
	api.Post("/site/reset", requireUser, siteHandler.Reset)

	api.Get("/history", requireUser, historyHandler.List)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return &testEnv{app: app, db: db, cfg: cfg, auth: auth}
}

// seedUser inserts an account directly and returns it.
func (e *testEnv) seedUser(t *testing.T, username, password string, superuser bool) *models.User {
	t.Helper()
	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		hash = string(h)
	}
	user := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		FullName:       username,
		HashedPassword: hash,
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

// token mints a bearer token for a seeded user.
func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.IssueToken(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// request performs an in-process request with an optional JSON body and
// bearer token, and decodes the response body into a generic map.
func (e *testEnv) request(t *testing.T, method, target, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, target, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Response from %s %s is not JSON: %v\n%s", method, target, err, raw)
		}
	}
	return resp, decoded
}

// data pulls the envelope data object out of a decoded response.
func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no data object: %v", body)
	}
	return d
}
