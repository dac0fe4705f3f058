// Package utils provides utility functions for the suntrack application.
package utils //nolint:revive // utils is a common and acceptable package name

import "time"

// UTCString formats a time.Time as an RFC3339 timestamp in UTC.
func UTCString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DateString formats a time.Time as a YYYY-MM-DD calendar date in UTC.
func DateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
