package services

import (
	"encoding/json"
	"fmt"

	"github.com/techcompass/tech-compass/data"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// siteConfigID: the configuration is a singleton row.
const siteConfigID = 1

// SiteService manages the singleton site configuration: create-once, patch,
// and reset to the embedded defaults.
type SiteService struct {
	db      *gorm.DB
	history *HistoryService
}

// NewSiteService creates a site configuration service.
func NewSiteService(db *gorm.DB, history *HistoryService) *SiteService {
	return &SiteService{db: db, history: history}
}

// SiteConfigInput carries the writable configuration fields.
type SiteConfigInput struct {
	SiteName       string          `json:"site_name"`
	Description    string          `json:"description"`
	WelcomeMessage string          `json:"welcome_message"`
	ContactEmail   string          `json:"contact_email"`
	LogoURL        string          `json:"logo_url"`
	Custom         json.RawMessage `json:"custom"`
}

// Get returns the singleton configuration, or NotFound before first create.
func (s *SiteService) Get() (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	err := s.db.First(&cfg, siteConfigID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.NotFound("site.notfound", "site configuration not created yet")
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Create writes the singleton row once; a second create fails with Conflict.
func (s *SiteService) Create(input SiteConfigInput, actor string) (*models.SiteConfig, error) {
	if existing, err := s.Get(); err == nil && existing != nil {
		return nil, types.Conflict("site.conflict", "site configuration already exists")
	} else if err != nil && !types.IsNotFound(err) {
		return nil, err
	}

	cfg := models.SiteConfig{
		ID:             siteConfigID,
		SiteName:       input.SiteName,
		Description:    input.Description,
		WelcomeMessage: input.WelcomeMessage,
		ContactEmail:   input.ContactEmail,
		LogoURL:        input.LogoURL,
		Custom:         datatypes.JSON(input.Custom),
		UpdatedBy:      actor,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cfg).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("site.conflict", "site configuration already exists")
			}
			return err
		}
		return s.history.Record(tx, "site_config", fmt.Sprintf("%d", cfg.ID), cfg.SiteName, models.ChangeCreate, actor, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SiteConfigPatch carries the optional fields of an update.
type SiteConfigPatch struct {
	SiteName       *string          `json:"site_name"`
	Description    *string          `json:"description"`
	WelcomeMessage *string          `json:"welcome_message"`
	ContactEmail   *string          `json:"contact_email"`
	LogoURL        *string          `json:"logo_url"`
	Custom         *json.RawMessage `json:"custom"`
}

// Update patches the singleton row.
func (s *SiteService) Update(patch SiteConfigPatch, actor string) (*models.SiteConfig, error) {
	cfg, err := s.Get()
	if err != nil {
		return nil, err
	}

	oldValues := map[string]interface{}{
		"site_name":       cfg.SiteName,
		"description":     cfg.Description,
		"welcome_message": cfg.WelcomeMessage,
		"contact_email":   cfg.ContactEmail,
		"logo_url":        cfg.LogoURL,
	}

	if patch.SiteName != nil {
		cfg.SiteName = *patch.SiteName
	}
	if patch.Description != nil {
		cfg.Description = *patch.Description
	}
	if patch.WelcomeMessage != nil {
		cfg.WelcomeMessage = *patch.WelcomeMessage
	}
	if patch.ContactEmail != nil {
		cfg.ContactEmail = *patch.ContactEmail
	}
	if patch.LogoURL != nil {
		cfg.LogoURL = *patch.LogoURL
	}
	if patch.Custom != nil {
		cfg.Custom = datatypes.JSON(*patch.Custom)
	}
	cfg.UpdatedBy = actor

	newValues := map[string]interface{}{
		"site_name":       cfg.SiteName,
		"description":     cfg.Description,
		"welcome_message": cfg.WelcomeMessage,
		"contact_email":   cfg.ContactEmail,
		"logo_url":        cfg.LogoURL,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "site_config", fmt.Sprintf("%d", cfg.ID), cfg.SiteName, models.ChangeUpdate, actor, newValues, oldValues)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reset restores the embedded default configuration, creating the row when it
// doesn't exist yet.
func (s *SiteService) Reset(actor string) (*models.SiteConfig, error) {
	var defaults SiteConfigInput
	if err := json.Unmarshal(data.DefaultSiteConfig, &defaults); err != nil {
		return nil, fmt.Errorf("embedded site defaults: %w", err)
	}

	cfg := models.SiteConfig{
		ID:             siteConfigID,
		SiteName:       defaults.SiteName,
		Description:    defaults.Description,
		WelcomeMessage: defaults.WelcomeMessage,
		ContactEmail:   defaults.ContactEmail,
		LogoURL:        defaults.LogoURL,
		Custom:         datatypes.JSON(defaults.Custom),
		UpdatedBy:      actor,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cfg).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "site_config", fmt.Sprintf("%d", cfg.ID), cfg.SiteName, models.ChangeUpdate, actor,
			map[string]interface{}{"reset": true}, nil)
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
