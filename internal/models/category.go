package models

import (
	"time"
)

// RadarQuadrantUnassigned marks a category not yet placed on the radar.
const RadarQuadrantUnassigned = -1

// Category groups solutions by exact name match. Solutions denormalize the
// category name, so renames cascade and deletion is blocked while referenced.
type Category struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	RadarQuadrant int       `gorm:"default:-1" json:"radar_quadrant"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `gorm:"size:255" json:"created_by"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedBy     string    `gorm:"size:255" json:"updated_by"`

	// Derived on read, never stored.
	UsageCount int64 `gorm:"-" json:"usage_count"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// ValidRadarQuadrant reports whether q is -1 (unassigned) or a quadrant 0..3.
func ValidRadarQuadrant(q int) bool {
	return q >= RadarQuadrantUnassigned && q <= 3
}
