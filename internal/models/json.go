package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// jsonDBDataType picks the JSON column type per driver. MSSQL has no native
// 'json' data type, so it falls back to NVARCHAR(MAX).
func jsonDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}

// StringList is an ordered list of strings stored as a JSON column.
// Used for solution tags, pros, cons and adopted users.
type StringList []string

// Value implements the driver.Valuer interface.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

// Scan implements the sql.Scanner interface.
func (l *StringList) Scan(value interface{}) error {
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = StringList(out)
	return nil
}

// GormDBDataType implements the schema.GormDataTypeInterface for migrations.
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db, field)
}

// Contains reports whether the list holds the given entry.
func (l StringList) Contains(entry string) bool {
	for _, e := range l {
		if e == entry {
			return true
		}
	}
	return false
}

// ChangeField records a single field transition inside a history record.
type ChangeField struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// ChangeList is the JSON column holding the per-field diff of an update.
type ChangeList []ChangeField

// Value implements the driver.Valuer interface.
func (l ChangeList) Value() (driver.Value, error) {
	if l == nil {
		l = ChangeList{}
	}
	b, err := json.Marshal([]ChangeField(l))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

// Scan implements the sql.Scanner interface.
func (l *ChangeList) Scan(value interface{}) error {
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = ChangeList{}
		return nil
	}
	var out []ChangeField
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ChangeList: %w", err)
	}
	*l = ChangeList(out)
	return nil
}

// GormDBDataType implements the schema.GormDataTypeInterface for migrations.
func (ChangeList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db, field)
}
