package util

import (
	"log/slog"
	"time"
)

// LoadLocation resolves an IANA zone name. Hosts without tzdata fall back to
// a fixed +09:00 zone for Asia/Seoul, the realm's market clock; any other
// unknown name falls back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	if name == "Asia/Seoul" {
		return time.FixedZone("KST", 9*60*60)
	}
	slog.Warn("unknown timezone, using UTC", "timezone", name, "error", err)
	return time.UTC
}
