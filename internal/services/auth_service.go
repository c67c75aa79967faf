package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/authorizerdev/authorizer-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	errExternalRejected = errors.New("external auth rejected")
)

// externalProfile is what an external verification yields beyond the yes/no.
type externalProfile struct {
	FullName string
	Email    string
}

// AuthService is the credential verifier and token authority. Local passwords
// are bcrypt hashes; when external delegation is enabled, verification goes
// to the configured auth server (fail-closed) and accounts are
// auto-provisioned on first external success with a blank local hash.
type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	history *HistoryService

	httpClient *http.Client

	authzOnce   sync.Once
	authzClient *authorizer.AuthorizerClient
	authzErr    error
}

// NewAuthService creates an auth service.
func NewAuthService(db *gorm.DB, cfg *config.Config, history *HistoryService) *AuthService {
	return &AuthService{
		db:         db,
		cfg:        cfg,
		history:    history,
		httpClient: &http.Client{Timeout: cfg.AuthServerTimeout},
	}
}

// Claims are the bearer-token claims: username as subject plus the registered
// time-box fields.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticate runs the per-login state machine and returns the verified
// user. External failures of any kind (timeout, non-200, malformed body)
// collapse to a generic Unauthorized; external detail is logged, never
// surfaced.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, types.Unauthorized("auth.credentials", "incorrect username or password")
	}

	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	if user != nil && !user.IsActive {
		return nil, types.Unauthorized("auth.inactive", "account inactive")
	}

	// The bootstrap admin always verifies locally, never via delegation.
	if username == s.cfg.AdminUsername {
		return s.verifyLocal(user, password)
	}

	if !s.cfg.AuthServerEnabled {
		return s.verifyLocal(user, password)
	}

	profile, err := s.verifyExternal(username, password)
	if err != nil {
		if !errors.Is(err, errExternalRejected) {
			log.Printf("External auth error for %s: %v", username, err)
		}
		return nil, types.Unauthorized("auth.credentials", "incorrect username or password")
	}

	if user == nil {
		return s.provisionExternalUser(username, profile)
	}
	// Inactive accounts were rejected above, before the external round-trip
	// for known users; re-check in case of a concurrent deactivation.
	if !user.IsActive {
		return nil, types.Unauthorized("auth.inactive", "account inactive")
	}
	return s.syncExternalProfile(user, profile)
}

// IssueToken signs a time-boxed HS256 bearer token with the username as
// subject.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    s.cfg.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken checks signature and time box and returns the subject
// username.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", types.Unauthorized("auth.token.expired", "token expired")
		}
		return "", types.Unauthorized("auth.token", "invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", types.Unauthorized("auth.token", "invalid token")
	}
	return claims.Subject, nil
}

// GetUser returns the user by username, or nil when absent.
func (s *AuthService) GetUser(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HashPassword produces a bcrypt hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// EnsureBootstrapAdmin creates or reactivates the reserved admin account from
// configuration. Called once at startup.
func (s *AuthService) EnsureBootstrapAdmin() error {
	existing, err := s.GetUser(s.cfg.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:       s.cfg.AdminUsername,
		Email:          s.cfg.AdminEmail,
		FullName:       "Administrator",
		HashedPassword: hash,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	log.Printf("Bootstrap admin '%s' created", admin.Username)
	return nil
}

// verifyLocal checks the password against the stored bcrypt hash. Users with
// a blank hash are externally managed and cannot log in locally.
func (s *AuthService) verifyLocal(user *models.User, password string) (*models.User, error) {
	if user == nil || user.ExternallyManaged() {
		return nil, types.Unauthorized("auth.credentials", "incorrect username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, types.Unauthorized("auth.credentials", "incorrect username or password")
	}
	return user, nil
}

// verifyExternal delegates to the configured backend. Single attempt, bounded
// timeout, fail closed.
func (s *AuthService) verifyExternal(username, password string) (*externalProfile, error) {
	switch s.cfg.AuthServerBackend {
	case config.AuthBackendAuthorizer:
		return s.verifyAuthorizer(username, password)
	default:
		return s.verifyGeneric(username, password)
	}
}

// verifyGeneric POSTs the credentials under the configured field names and
// content type. Anything but a 200 with parseable JSON is a rejection.
func (s *AuthService) verifyGeneric(username, password string) (*externalProfile, error) {
	var req *http.Request
	var err error

	userField := s.cfg.AuthUsernameField
	if userField == "" {
		userField = "username"
	}
	passField := s.cfg.AuthPasswordField
	if passField == "" {
		passField = "password"
	}

	if s.cfg.AuthServerContentType == "application/x-www-form-urlencoded" {
		form := url.Values{}
		form.Set(userField, username)
		form.Set(passField, password)
		req, err = http.NewRequest(http.MethodPost, s.cfg.AuthServerURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		payload := map[string]string{
			userField: username,
			passField: password,
		}
		body, err2 := json.Marshal(payload)
		if err2 != nil {
			return nil, err2
		}
		req, err = http.NewRequest(http.MethodPost, s.cfg.AuthServerURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errExternalRejected
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth server response: %w", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("auth server response: %w", err)
	}

	return profileFromBody(body), nil
}

// profileFromBody pulls full name and email from the common response shapes:
// top-level keys or a nested "user" object.
func profileFromBody(body map[string]interface{}) *externalProfile {
	if nested, ok := body["user"].(map[string]interface{}); ok {
		body = nested
	}
	p := &externalProfile{}
	for _, key := range []string{"full_name", "fullName", "name"} {
		if v, ok := body[key].(string); ok && v != "" {
			p.FullName = v
			break
		}
	}
	if v, ok := body["email"].(string); ok {
		p.Email = v
	}
	return p
}

// verifyAuthorizer delegates through the Authorizer SDK. The client is
// created lazily on first use, like the reachability-gated init in the
// health path.
func (s *AuthService) verifyAuthorizer(username, password string) (*externalProfile, error) {
	s.authzOnce.Do(func() {
		s.authzClient, s.authzErr = authorizer.NewAuthorizerClient(
			s.cfg.AuthServerClientID, s.cfg.AuthServerURL, "", nil)
	})
	if s.authzErr != nil {
		return nil, fmt.Errorf("authorizer client: %w", s.authzErr)
	}

	email := username
	res, err := s.authzClient.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return nil, errExternalRejected
	}
	if res == nil || res.AccessToken == nil {
		return nil, errExternalRejected
	}
	// Authorizer accounts are keyed by email; reuse it for the local record.
	return &externalProfile{Email: username}, nil
}

// provisionExternalUser creates the local record for a first-time external
// login: blank hash sentinel, profile from the external system with defaults.
func (s *AuthService) provisionExternalUser(username string, profile *externalProfile) (*models.User, error) {
	user := models.User{
		Username:       username,
		Email:          profile.Email,
		FullName:       profile.FullName,
		HashedPassword: "",
		IsActive:       true,
		IsSuperuser:    false,
	}
	if user.FullName == "" {
		user.FullName = username
	}
	if user.Email == "" {
		user.Email = username
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				// Concurrent first login; use the row that won.
				return tx.Where("username = ?", username).First(&user).Error
			}
			return err
		}
		return s.history.Record(tx, "user", fmt.Sprintf("%d", user.ID), user.Username, models.ChangeCreate, "system", nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// syncExternalProfile updates the stored full name/email when the external
// system reports different values. System-attributed, not user-attributed.
func (s *AuthService) syncExternalProfile(user *models.User, profile *externalProfile) (*models.User, error) {
	updates := map[string]interface{}{}
	if profile.FullName != "" && profile.FullName != user.FullName {
		updates["full_name"] = profile.FullName
		user.FullName = profile.FullName
	}
	if profile.Email != "" && profile.Email != user.Email {
		updates["email"] = profile.Email
		user.Email = profile.Email
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}
