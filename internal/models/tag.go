package models

import (
	"time"
)

// Tag is keyed by its canonical name (lowercase, hyphen-normalized). Two raw
// inputs that normalize identically resolve to the same row.
type Tag struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `gorm:"size:255" json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `gorm:"size:255" json:"updated_by"`

	// Derived on read as the count of solutions listing this tag.
	UsageCount int64 `gorm:"-" json:"usage_count"`
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
