package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with all tables migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Solution{},
		&models.Rating{},
		&models.Comment{},
		&models.HistoryRecord{},
		&models.SiteConfig{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// registry bundles the full service graph over one test database
type registry struct {
	db         *gorm.DB
	cfg        *config.Config
	history    *HistoryService
	categories *CategoryService
	tags       *TagService
	solutions  *SolutionService
	ratings    *RatingService
	comments   *CommentService
	site       *SiteService
	auth       *AuthService
	users      *UserService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		AccessTokenExpire: time.Hour,
		TokenIssuer:       "tech-compass-test",
		AdminUsername:     "admin",
		AdminPassword:     "admin-password",
		AdminEmail:        "admin@example.com",
		AuthServerTimeout: time.Second,
		AuthUsernameField: "username",
		AuthPasswordField: "password",
	}
}

func setupRegistry(t *testing.T) *registry {
	t.Helper()
	db := setupTestDB(t)
	cfg := testConfig()
	history := NewHistoryService(db)
	categories := NewCategoryService(db, history, time.Minute)
	tags := NewTagService(db, history)
	solutions := NewSolutionService(db, categories, tags, history)
	return &registry{
		db:         db,
		cfg:        cfg,
		history:    history,
		categories: categories,
		tags:       tags,
		solutions:  solutions,
		ratings:    NewRatingService(db, solutions),
		comments:   NewCommentService(db, solutions),
		site:       NewSiteService(db, history),
		auth:       NewAuthService(db, cfg, history),
		users:      NewUserService(db, cfg, history),
	}
}

// seedUser inserts an active account directly
func seedUser(t *testing.T, db *gorm.DB, username, password string, superuser bool) *models.User {
	t.Helper()
	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		hash = string(h)
	}
	user := models.User{
		Username:       username,
		HashedPassword: hash,
		Email:          username + "@example.com",
		FullName:       "Test " + username,
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return &user
}

func mustCreateSolution(t *testing.T, r *registry, name string, actor *models.User) *models.Solution {
	t.Helper()
	sol, err := r.solutions.Create(SolutionInput{Name: name, Category: "Infrastructure"}, actor)
	if err != nil {
		t.Fatalf("Failed to create solution %s: %v", name, err)
	}
	return sol
}
