package models

import (
	"time"
)

// Rating holds at most one score per (solution, user) pair; posting again
// updates in place. Score is 1..5 with an optional free-text comment.
type Rating struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	SolutionID uint64    `gorm:"not null;index:idx_rating_solution_user,unique" json:"solution_id"`
	Username   string    `gorm:"size:255;not null;index:idx_rating_solution_user,unique" json:"username"`
	Score      int       `gorm:"not null" json:"score"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for Rating
func (Rating) TableName() string {
	return "ratings"
}

// RatingSummary is computed by aggregation over the current ratings of a
// solution at query time; no running totals are persisted.
type RatingSummary struct {
	Average   float64       `json:"average"`
	Count     int64         `json:"count"`
	Histogram map[int]int64 `json:"histogram"`
}
