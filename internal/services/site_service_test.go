package services

import (
	"encoding/json"
	"testing"

	"github.com/techcompass/tech-compass/internal/types"
)

func TestSiteConfigCreateOnce(t *testing.T) {
	r := setupRegistry(t)

	if _, err := r.site.Get(); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound before first create, got %v", err)
	}

	cfg, err := r.site.Create(SiteConfigInput{
		SiteName:     "Compass",
		ContactEmail: "ops@example.com",
		Custom:       json.RawMessage(`{"theme":"dark"}`),
	}, "admin")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cfg.SiteName != "Compass" || cfg.UpdatedBy != "admin" {
		t.Errorf("Unexpected config row: %+v", cfg)
	}

	if _, err := r.site.Create(SiteConfigInput{SiteName: "Again"}, "admin"); !types.IsConflict(err) {
		t.Errorf("Expected Conflict on a second create, got %v", err)
	}
}

func TestSiteConfigUpdatePatchesFields(t *testing.T) {
	r := setupRegistry(t)

	if _, err := r.site.Update(SiteConfigPatch{}, "admin"); !types.IsNotFound(err) {
		t.Errorf("Expected NotFound updating before create, got %v", err)
	}

	if _, err := r.site.Create(SiteConfigInput{
		SiteName:    "Compass",
		Description: "catalog",
	}, "admin"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	welcome := "hello"
	cfg, err := r.site.Update(SiteConfigPatch{WelcomeMessage: &welcome}, "editor")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cfg.WelcomeMessage != "hello" {
		t.Errorf("Expected the patched welcome message, got %q", cfg.WelcomeMessage)
	}
	if cfg.SiteName != "Compass" || cfg.Description != "catalog" {
		t.Error("Untouched fields must survive a patch")
	}
	if cfg.UpdatedBy != "editor" {
		t.Errorf("Expected updated_by editor, got %s", cfg.UpdatedBy)
	}
}

func TestSiteConfigReset(t *testing.T) {
	r := setupRegistry(t)

	// Reset works even before the row exists.
	cfg, err := r.site.Reset("admin")
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if cfg.SiteName != "Tech Compass" {
		t.Errorf("Expected the embedded default site name, got %q", cfg.SiteName)
	}

	name := "Renamed"
	if _, err := r.site.Update(SiteConfigPatch{SiteName: &name}, "admin"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cfg, err = r.site.Reset("admin")
	if err != nil {
		t.Fatalf("Second reset failed: %v", err)
	}
	if cfg.SiteName != "Tech Compass" {
		t.Errorf("Expected the defaults back after reset, got %q", cfg.SiteName)
	}

	var custom map[string]interface{}
	if err := json.Unmarshal(cfg.Custom, &custom); err != nil {
		t.Fatalf("Custom payload is not valid JSON: %v", err)
	}
	if _, ok := custom["radar_quadrants"]; !ok {
		t.Error("Expected the default custom payload to carry radar_quadrants")
	}
}
