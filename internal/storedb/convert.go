package storedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NullString converts an optional string field to its nullable SQL form.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts a nullable SQL string back to an optional field.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// NullInt64 converts an optional int64 field to its nullable SQL form.
func NullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// Int64Ptr converts a nullable SQL int64 back to an optional field.
func Int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// NullTime converts an optional time field to its nullable SQL form.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr converts a nullable SQL time back to an optional field.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

// UUIDString renders a UUID for storage in a TEXT primary/foreign key column.
func UUIDString(id uuid.UUID) string {
	return id.String()
}

// NullUUID converts an optional UUID field to its nullable SQL text form.
func NullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// ParseUUID parses a TEXT column value into a uuid.UUID, wrapping the
// underlying parse error with the column name for diagnosability.
func ParseUUID(column, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("parse %s %q: %w", column, raw, err)
	}
	return id, nil
}

// ParseNullUUID parses a nullable TEXT column into an optional UUID.
func ParseNullUUID(column string, ns sql.NullString) (*uuid.UUID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := ParseUUID(column, ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// BoolToInt renders a bool as the 0/1 SQLite uses for INTEGER-backed flags.
func BoolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// IntToBool is the inverse of BoolToInt.
func IntToBool(i int64) bool {
	return i != 0
}
