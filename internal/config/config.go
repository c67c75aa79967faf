package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// External auth backends.
const (
	AuthBackendGeneric    = "generic"
	AuthBackendAuthorizer = "authorizer"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// JWT configuration
	JWTSecret          string
	AccessTokenExpire  time.Duration
	TokenIssuer        string

	// External auth server delegation
	AuthServerEnabled     bool
	AuthServerBackend     string // generic | authorizer
	AuthServerURL         string
	AuthServerClientID    string // authorizer backend only
	AuthServerContentType string // application/json | application/x-www-form-urlencoded
	AuthUsernameField     string
	AuthPasswordField     string
	AuthServerTimeout     time.Duration

	// Bootstrap admin identity: always verified locally, never delegated.
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Category list cache
	CategoryCacheTTL time.Duration
}

// Load loads configuration from environment variables. A .env file in the
// working directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "3000"),
		DBType:                getEnv("DB_TYPE", "mysql"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "3306"),
		DBDatabase:            getEnv("DB_DATABASE", ""),
		DBUser:                getEnv("DB_USER", ""),
		DBPassword:            getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:     getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AccessTokenExpire:     time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		TokenIssuer:           getEnv("TOKEN_ISSUER", "tech-compass"),
		AuthServerEnabled:     getEnvAsBool("AUTH_SERVER_ENABLED", false),
		AuthServerBackend:     getEnv("AUTH_SERVER_BACKEND", AuthBackendGeneric),
		AuthServerURL:         getEnv("AUTH_SERVER_URL", ""),
		AuthServerClientID:    getEnv("AUTH_SERVER_CLIENT_ID", ""),
		AuthServerContentType: getEnv("AUTH_SERVER_CONTENT_TYPE", "application/json"),
		AuthUsernameField:     getEnv("AUTH_SERVER_USERNAME_FIELD", "username"),
		AuthPasswordField:     getEnv("AUTH_SERVER_PASSWORD_FIELD", "password"),
		AuthServerTimeout:     time.Duration(getEnvAsInt("AUTH_SERVER_TIMEOUT_SECONDS", 5)) * time.Second,
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:            getEnv("ADMIN_EMAIL", "admin@localhost"),
		RateLimitMax:          getEnvAsInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow:       time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		CategoryCacheTTL:      time.Duration(getEnvAsInt("CATEGORY_CACHE_TTL_SECONDS", 30)) * time.Second,
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.AuthServerEnabled {
		if cfg.AuthServerURL == "" {
			return nil, fmt.Errorf("AUTH_SERVER_URL is required when AUTH_SERVER_ENABLED=true")
		}
		switch cfg.AuthServerBackend {
		case AuthBackendGeneric:
		case AuthBackendAuthorizer:
			if cfg.AuthServerClientID == "" {
				return nil, fmt.Errorf("AUTH_SERVER_CLIENT_ID is required for the authorizer backend")
			}
		default:
			return nil, fmt.Errorf("unsupported AUTH_SERVER_BACKEND: %s", cfg.AuthServerBackend)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
