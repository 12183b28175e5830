package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Snapshot is a field-value copy of an entity stored as a JSON column.
// A nil Snapshot is stored as NULL.
type Snapshot map[string]any

func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(s))
	if err != nil {
		return nil, fmt.Errorf("snapshot value: %w", err)
	}
	return string(b), nil
}

func (s *Snapshot) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("snapshot scan: unsupported type %T", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = nil
		return nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("snapshot scan: %w", err)
	}
	*s = m
	return nil
}

// GormDataType lets AutoMigrate pick a JSON column on every dialect.
func (Snapshot) GormDataType() string { return "json" }

// SnapshotOf captures v through its JSON form, dropping the omitted keys.
func SnapshotOf(v any, omit ...string) (Snapshot, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for _, k := range omit {
		delete(m, k)
	}
	return m, nil
}

// Snapshot excludes bookkeeping fields so a diff only ever shows data changes.
func (r CVRecord) Snapshot() (Snapshot, error) {
	return SnapshotOf(r, "updatedAt")
}

// Snapshot never contains the password hash (json:"-").
func (u UserProfile) Snapshot() (Snapshot, error) {
	return SnapshotOf(u, "updatedAt", "lastLogin", "modifiedBy")
}
