package models

import (
	"time"
)

// User is a local account. A blank HashedPassword is the sentinel for an
// externally-managed account: it was auto-provisioned on first successful
// external login, cannot change its password locally, and cannot be deleted
// through the normal account flow.
type User struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email          string    `gorm:"size:255" json:"email"`
	FullName       string    `gorm:"size:255" json:"full_name"`
	HashedPassword string    `gorm:"size:255" json:"-"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	IsSuperuser    bool      `gorm:"default:false" json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// ExternallyManaged reports whether the account is owned by the external auth
// system (blank local password hash).
func (u *User) ExternallyManaged() bool {
	return u.HashedPassword == ""
}
