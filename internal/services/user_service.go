package services

import (
	"fmt"
	"strings"

	"github.com/techcompass/tech-compass/internal/config"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages local accounts. Externally-managed accounts (blank
// password hash) can never change their password or be deleted through these
// operations.
type UserService struct {
	db      *gorm.DB
	cfg     *config.Config
	history *HistoryService
}

// NewUserService creates a user service.
func NewUserService(db *gorm.DB, cfg *config.Config, history *HistoryService) *UserService {
	return &UserService{db: db, cfg: cfg, history: history}
}

// Get returns the user by username, or NotFound.
func (s *UserService) Get(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.NotFound("user.notfound", "user '%s' not found", username)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create registers a local account with a bcrypt-hashed password.
// Superuser-gated at the handler level.
func (s *UserService) Create(username, password, email, fullName string, isSuperuser bool, actor string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, types.InvalidArgument("user.validation.username", "username must not be empty")
	}
	if password == "" {
		return nil, types.InvalidArgument("user.validation.password", "password must not be empty")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:       username,
		Email:          email,
		FullName:       fullName,
		HashedPassword: hash,
		IsActive:       true,
		IsSuperuser:    isSuperuser,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict("user.conflict.username", "username '%s' already exists", username)
			}
			return err
		}
		return s.history.Record(tx, "user", fmt.Sprintf("%d", user.ID), user.Username, models.ChangeCreate, actor, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of users, superuser-gated at the handler level.
func (s *UserService) List(skip, limit int) ([]models.User, int64, error) {
	skip, limit = normalizePage(skip, limit)

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.Order("username ASC").Offset(skip).Limit(limit).Find(&users).Error
	return users, total, err
}

// UserPatch carries the optional profile fields of an update.
type UserPatch struct {
	Email       *string
	FullName    *string
	IsActive    *bool
	IsSuperuser *bool
}

// Update patches a user's profile. IsActive/IsSuperuser changes require a
// superuser actor; users may edit their own email and full name.
func (s *UserService) Update(username string, patch UserPatch, actor *models.User) (*models.User, error) {
	if username != actor.Username && !actor.IsSuperuser {
		return nil, types.Forbidden("user.authorization", "cannot modify another user's account")
	}
	if (patch.IsActive != nil || patch.IsSuperuser != nil) && !actor.IsSuperuser {
		return nil, types.Forbidden("user.authorization", "only a superuser may change account flags")
	}

	user, err := s.Get(username)
	if err != nil {
		return nil, err
	}

	oldValues := map[string]interface{}{
		"email":        user.Email,
		"full_name":    user.FullName,
		"is_active":    user.IsActive,
		"is_superuser": user.IsSuperuser,
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	newValues := map[string]interface{}{
		"email":        user.Email,
		"full_name":    user.FullName,
		"is_active":    user.IsActive,
		"is_superuser": user.IsSuperuser,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "user", fmt.Sprintf("%d", user.ID), user.Username, models.ChangeUpdate, actor.Username, newValues, oldValues)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores the new hash.
// Externally-managed accounts fail with Forbidden regardless of the supplied
// credentials.
func (s *UserService) ChangePassword(username, currentPassword, newPassword string) error {
	user, err := s.Get(username)
	if err != nil {
		return err
	}
	if user.ExternallyManaged() {
		return types.Forbidden("user.external", "password for externally-managed accounts cannot be changed here")
	}
	if newPassword == "" {
		return types.InvalidArgument("user.validation.password", "new password must not be empty")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(currentPassword)) != nil {
		return types.Unauthorized("auth.credentials", "incorrect username or password")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("hashed_password", hash).Error
}

// Delete removes a local account. Externally-managed accounts and the
// bootstrap admin cannot be deleted through this flow.
func (s *UserService) Delete(username string, actor *models.User) error {
	if username != actor.Username && !actor.IsSuperuser {
		return types.Forbidden("user.authorization", "cannot delete another user's account")
	}

	user, err := s.Get(username)
	if err != nil {
		return err
	}
	if user.ExternallyManaged() {
		return types.Forbidden("user.external", "externally-managed accounts cannot be deleted here")
	}
	if user.Username == s.cfg.AdminUsername {
		return types.Forbidden("user.bootstrap", "the bootstrap admin account cannot be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
			return err
		}
		return s.history.Record(tx, "user", fmt.Sprintf("%d", user.ID), user.Username, models.ChangeDelete, actor.Username, nil, nil)
	})
}
