package models

import (
	"time"
)

// Change types recorded in the history log.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// HistoryRecord is an append-only audit entry. Update records carry the
// field-level diff; create/delete records carry no diff. Records are never
// mutated or deleted by the system.
type HistoryRecord struct {
	ID         string     `gorm:"primaryKey;type:char(36)" json:"id"`
	ObjectType string     `gorm:"size:64;not null;index" json:"object_type"`
	ObjectID   string     `gorm:"size:64;index" json:"object_id"`
	ObjectName string     `gorm:"size:255;index" json:"object_name"`
	ChangeType string     `gorm:"size:16;not null;index" json:"change_type"`
	Changes    ChangeList `gorm:"type:json" json:"changes"`
	Summary    string     `gorm:"size:512" json:"summary"`
	Username   string     `gorm:"size:255;index" json:"username"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// TableName overrides the table name for HistoryRecord
func (HistoryRecord) TableName() string {
	return "history_records"
}
