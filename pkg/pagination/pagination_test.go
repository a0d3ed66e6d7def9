package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default for zero, got %d", got)
	}
	if got := NormalizeLimit(-3); got != DefaultLimit {
		t.Fatalf("expected default for negative, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 100); got != MaxLimit {
		t.Fatalf("expected cap at max, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{Time: time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC), ID: uuid.New()}
	encoded := EncodeCursor(cursor)

	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !decoded.Time.Equal(cursor.Time) || decoded.ID != cursor.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, cursor)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	if cur, err := ParseCursor(" "); err != nil || cur != nil {
		t.Fatalf("expected nil cursor for blank input, got %v / %v", cur, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
}
