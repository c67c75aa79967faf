package helpers

import (
	"testing"

	"github.com/techcompass/tech-compass/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateTestUser inserts an active local account with a bcrypt-hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string, superuser bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Username:       username,
		HashedPassword: string(hash),
		Email:          username + "@example.com",
		FullName:       username,
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}

// CreateTestCategory inserts a category row directly
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	cat := models.Category{
		Name:          name,
		RadarQuadrant: models.RadarQuadrantUnassigned,
	}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}
	return &cat
}

// CreateTestSolution inserts a solution row directly, bypassing the service
// layer. Slug must already be unique.
func CreateTestSolution(t *testing.T, db *gorm.DB, name, slug, category string, tags []string) *models.Solution {
	t.Helper()
	sol := models.Solution{
		Name:            name,
		Slug:            slug,
		Category:        category,
		Tags:            models.StringList(tags),
		Stage:           models.StageDeveloping,
		RecommendStatus: models.RecommendAssess,
		ReviewStatus:    models.ReviewPending,
		AdoptedUsers:    models.StringList{},
	}
	if err := db.Create(&sol).Error; err != nil {
		t.Fatalf("Failed to create solution %s: %v", name, err)
	}
	return &sol
}
