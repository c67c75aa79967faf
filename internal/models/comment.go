package models

import (
	"time"
)

// CommentMaxLength bounds the trimmed comment content.
const CommentMaxLength = 1000

// Comment is a free-text note on a solution, many per solution, ordered by
// creation time.
type Comment struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	SolutionID uint64    `gorm:"not null;index" json:"solution_id"`
	Username   string    `gorm:"size:255;not null;index" json:"username"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
