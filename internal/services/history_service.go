package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techcompass/tech-compass/internal/models"
	"gorm.io/gorm"
)

// HistoryService writes and queries the append-only change log. Records are
// never mutated or deleted once written.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a history service over the given database.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// HistoryFilter narrows a history query. Zero values mean "no filter".
// ObjectName matches as a case-insensitive substring.
type HistoryFilter struct {
	ObjectType string
	ObjectID   string
	ObjectName string
	ChangeType string
	Username   string
	From       time.Time
	To         time.Time
}

// Record appends one history entry. For updates, newValues is diffed against
// oldValues field by field and only changed fields are kept; create/delete
// records carry no diff. When summary is empty a one-line summary is
// generated. Uses tx so callers can include the record in their transaction.
func (s *HistoryService) Record(tx *gorm.DB, objectType, objectID, objectName, changeType, actor string, newValues, oldValues map[string]interface{}) error {
	if tx == nil {
		tx = s.db
	}

	var changes models.ChangeList
	if changeType == models.ChangeUpdate {
		changes = DiffFields(newValues, oldValues)
	}

	rec := models.HistoryRecord{
		ID:         uuid.New().String(),
		ObjectType: objectType,
		ObjectID:   objectID,
		ObjectName: objectName,
		ChangeType: changeType,
		Changes:    changes,
		Summary:    summarize(objectType, objectName, changeType, changes),
		Username:   actor,
	}

	return tx.Create(&rec).Error
}

// List returns matching records newest-first with the total match count.
func (s *HistoryService) List(filter HistoryFilter, skip, limit int) ([]models.HistoryRecord, int64, error) {
	skip, limit = normalizePage(skip, limit)

	q := s.db.Model(&models.HistoryRecord{})
	if filter.ObjectType != "" {
		q = q.Where("object_type = ?", filter.ObjectType)
	}
	if filter.ObjectID != "" {
		q = q.Where("object_id = ?", filter.ObjectID)
	}
	if filter.ObjectName != "" {
		q = q.Where("LOWER(object_name) LIKE ?", "%"+strings.ToLower(filter.ObjectName)+"%")
	}
	if filter.ChangeType != "" {
		q = q.Where("change_type = ?", filter.ChangeType)
	}
	if filter.Username != "" {
		q = q.Where("username = ?", filter.Username)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.HistoryRecord
	err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&records).Error
	return records, total, err
}

// DiffFields keeps only the fields whose values actually changed between the
// old and new snapshots. Fields absent from oldValues count as changed when
// the new value is non-nil.
func DiffFields(newValues, oldValues map[string]interface{}) models.ChangeList {
	changes := models.ChangeList{}
	for field, newVal := range newValues {
		oldVal, had := oldValues[field]
		if had && equalValues(oldVal, newVal) {
			continue
		}
		if !had && newVal == nil {
			continue
		}
		changes = append(changes, models.ChangeField{
			Field:    field,
			OldValue: oldVal,
			NewValue: newVal,
		})
	}
	return changes
}

// equalValues compares via string formatting so int/int64/float encodings of
// the same number, and slices with equal elements, compare equal.
func equalValues(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// summarize produces the human-readable one-line form:
// "Created solution 'Widget'", "Updated solution 'Widget': stage, version".
func summarize(objectType, objectName, changeType string, changes models.ChangeList) string {
	switch changeType {
	case models.ChangeCreate:
		return fmt.Sprintf("Created %s '%s'", objectType, objectName)
	case models.ChangeDelete:
		return fmt.Sprintf("Deleted %s '%s'", objectType, objectName)
	case models.ChangeUpdate:
		if len(changes) == 0 {
			return fmt.Sprintf("Updated %s '%s'", objectType, objectName)
		}
		fields := make([]string, len(changes))
		for i, ch := range changes {
			fields[i] = ch.Field
		}
		return fmt.Sprintf("Updated %s '%s': %s", objectType, objectName, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%s %s '%s'", changeType, objectType, objectName)
}
