package models

import (
	"time"
)

// Lifecycle stages of a solution.
const (
	StageDeveloping = "DEVELOPING"
	StageUAT        = "UAT"
	StageProduction = "PRODUCTION"
	StageDeprecated = "DEPRECATED"
	StageRetired    = "RETIRED"
)

// Recommendation statuses (radar ring).
const (
	RecommendAdopt  = "ADOPT"
	RecommendTrial  = "TRIAL"
	RecommendAssess = "ASSESS"
	RecommendHold   = "HOLD"
)

// Review statuses, controlled by superusers only.
const (
	ReviewPending  = "PENDING"
	ReviewApproved = "APPROVED"
	ReviewRejected = "REJECTED"
)

// Solution is a catalogued technology solution. The category name and tag keys
// are denormalized onto the row; renames cascade from the category/tag
// registries. The slug is derived from the name and unique across solutions.
type Solution struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Slug             string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description      string     `gorm:"type:text" json:"description"`
	Brief            string     `gorm:"size:512" json:"brief"`
	Category         string     `gorm:"size:255;index" json:"category"`
	Department       string     `gorm:"size:255;index" json:"department"`
	Team             string     `gorm:"size:255;index" json:"team"`
	TeamEmail        string     `gorm:"size:255" json:"team_email"`
	MaintainerID     string     `gorm:"size:255" json:"maintainer_id"`
	MaintainerName   string     `gorm:"size:255" json:"maintainer_name"`
	MaintainerEmail  string     `gorm:"size:255" json:"maintainer_email"`
	OfficialWebsite  string     `gorm:"size:512" json:"official_website"`
	DocumentationURL string     `gorm:"size:512" json:"documentation_url"`
	DemoURL          string     `gorm:"size:512" json:"demo_url"`
	Version          string     `gorm:"size:64" json:"version"`
	Tags             StringList `gorm:"type:json" json:"tags"`
	Pros             StringList `gorm:"type:json" json:"pros"`
	Cons             StringList `gorm:"type:json" json:"cons"`
	Stage            string     `gorm:"size:32;index" json:"stage"`
	RecommendStatus  string     `gorm:"size:32;index" json:"recommend_status"`
	ReviewStatus     string     `gorm:"size:32;index;default:PENDING" json:"review_status"`
	AdoptedUsers     StringList `gorm:"type:json" json:"adopted_users"`
	CreatedAt        time.Time  `json:"created_at"`
	CreatedBy        string     `gorm:"size:255;index" json:"created_by"`
	UpdatedAt        time.Time  `json:"updated_at"`
	UpdatedBy        string     `gorm:"size:255" json:"updated_by"`
}

// TableName overrides the table name for Solution
func (Solution) TableName() string {
	return "solutions"
}

// ValidStage reports whether s is a known lifecycle stage. Empty is allowed
// (treated as unset).
func ValidStage(s string) bool {
	switch s {
	case "", StageDeveloping, StageUAT, StageProduction, StageDeprecated, StageRetired:
		return true
	}
	return false
}

// ValidRecommendStatus reports whether s is a known recommendation status.
func ValidRecommendStatus(s string) bool {
	switch s {
	case "", RecommendAdopt, RecommendTrial, RecommendAssess, RecommendHold:
		return true
	}
	return false
}

// ValidReviewStatus reports whether s is a known review status.
func ValidReviewStatus(s string) bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}
