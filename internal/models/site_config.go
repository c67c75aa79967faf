package models

import (
	"time"

	"gorm.io/datatypes"
)

// SiteConfig is a singleton row (create-once, patch, reset-to-defaults).
// Custom holds free-form UI settings the server does not interpret.
type SiteConfig struct {
	ID             uint64         `gorm:"primaryKey" json:"id"`
	SiteName       string         `gorm:"size:255" json:"site_name"`
	Description    string         `gorm:"type:text" json:"description"`
	WelcomeMessage string         `gorm:"size:512" json:"welcome_message"`
	ContactEmail   string         `gorm:"size:255" json:"contact_email"`
	LogoURL        string         `gorm:"size:512" json:"logo_url"`
	Custom         datatypes.JSON `gorm:"type:json" json:"custom"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	UpdatedBy      string         `gorm:"size:255" json:"updated_by"`
}

// TableName overrides the table name for SiteConfig
func (SiteConfig) TableName() string {
	return "site_configs"
}
