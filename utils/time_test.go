package utils

import (
	"testing"
	"time"
)

func TestUTCString(t *testing.T) {
	riga := time.FixedZone("EEST", 3*60*60)
	ts := time.Date(2024, 6, 1, 17, 37, 5, 0, riga)

	got := UTCString(ts)
	expected := "2024-06-01T14:37:05Z"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestDateString(t *testing.T) {
	// A local time late in the evening can fall on the next UTC date.
	riga := time.FixedZone("EET", 2*60*60)
	ts := time.Date(2024, 1, 1, 1, 30, 0, 0, riga)

	got := DateString(ts)
	expected := "2023-12-31"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
