package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/techcompass/tech-compass/internal/types"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-index violation. GORM's error
// translation covers mysql/postgres/sqlite; the string checks catch drivers
// that bypass it (sqlserver).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}

// normalizePage clamps skip/limit to sane bounds.
func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return skip, limit
}

// parseSort validates a sort expression ("field" or "-field" for descending)
// against an allow-list and returns the ORDER BY clause. The caller appends a
// secondary name sort for stable ordering when the primary key isn't name.
func parseSort(sort, errorType string, allowed map[string]bool) (string, error) {
	field := strings.TrimSpace(sort)
	desc := false
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	if !allowed[field] {
		return "", types.InvalidArgument(errorType, "unsupported sort field '%s'", field)
	}
	if desc {
		return fmt.Sprintf("%s DESC", field), nil
	}
	return fmt.Sprintf("%s ASC", field), nil
}

// sortField strips the descending prefix for allow-list and secondary-sort checks.
func sortField(sort string) string {
	return strings.TrimPrefix(strings.TrimSpace(sort), "-")
}
