package services

import (
	"fmt"
	"log"

	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	AuthServer   string            `json:"auth_server,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check external auth server connectivity when delegation is enabled
	if cfg.AuthServerEnabled {
		if err := utils.PingAuthServer(cfg.AuthServerURL); err != nil {
			result.Status = "unhealthy"
			result.AuthServer = "unreachable"
			result.Details["auth_server_error"] = err.Error()
			if result.ErrorMessage == "" {
				result.ErrorMessage = fmt.Sprintf("Auth server ping failed: %v", err)
			} else {
				result.ErrorMessage += fmt.Sprintf("; auth server ping failed: %v", err)
			}
			log.Printf("Health check failed - auth server ping: %v", err)
		} else {
			result.AuthServer = "ok"
			result.Details["auth_server_url"] = cfg.AuthServerURL
		}
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
