package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DatePath renders t as a yyyy/mm object key prefix.
func DatePath(t time.Time) string {
	return t.UTC().Format("2006/01")
}
