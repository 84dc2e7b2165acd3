package storedb

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

func TestNullStringRoundTrip(t *testing.T) {
	if got := StringPtr(NullString(nil)); got != nil {
		t.Errorf("StringPtr(NullString(nil)) = %v, want nil", got)
	}

	s := "hello"
	got := StringPtr(NullString(&s))
	if got == nil || *got != s {
		t.Errorf("StringPtr(NullString(&s)) = %v, want %q", got, s)
	}
}

func TestNullInt64RoundTrip(t *testing.T) {
	if got := Int64Ptr(NullInt64(nil)); got != nil {
		t.Errorf("Int64Ptr(NullInt64(nil)) = %v, want nil", got)
	}

	var n int64 = 42
	got := Int64Ptr(NullInt64(&n))
	if got == nil || *got != n {
		t.Errorf("Int64Ptr(NullInt64(&n)) = %v, want %d", got, n)
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	if got := TimePtr(NullTime(nil)); got != nil {
		t.Errorf("TimePtr(NullTime(nil)) = %v, want nil", got)
	}

	now := Now()
	got := TimePtr(NullTime(&now))
	if got == nil || !got.Equal(now) {
		t.Errorf("TimePtr(NullTime(&now)) = %v, want %v", got, now)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.New()

	parsed, err := ParseUUID("id", UUIDString(id))
	if err != nil {
		t.Fatalf("ParseUUID failed: %v", err)
	}
	if parsed != id {
		t.Errorf("ParseUUID(UUIDString(id)) = %v, want %v", parsed, id)
	}

	if _, err := ParseUUID("id", "not-a-uuid"); err == nil {
		t.Error("ParseUUID should reject malformed input")
	}
}

func TestNullUUIDRoundTrip(t *testing.T) {
	got, err := ParseNullUUID("id", sql.NullString{})
	if err != nil || got != nil {
		t.Errorf("ParseNullUUID(invalid) = (%v, %v), want (nil, nil)", got, err)
	}

	id := uuid.New()
	parsed, err := ParseNullUUID("id", NullUUID(&id))
	if err != nil {
		t.Fatalf("ParseNullUUID failed: %v", err)
	}
	if parsed == nil || *parsed != id {
		t.Errorf("ParseNullUUID(NullUUID(&id)) = %v, want %v", parsed, id)
	}
}

func TestBoolIntRoundTrip(t *testing.T) {
	if BoolToInt(true) != 1 || BoolToInt(false) != 0 {
		t.Error("BoolToInt mapping is wrong")
	}
	if !IntToBool(1) || IntToBool(0) {
		t.Error("IntToBool mapping is wrong")
	}
}
