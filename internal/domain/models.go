package domain

import "time"

type SourceID string

// Source is one monitored application page.
type Source struct {
	ID             SourceID `json:"id"`
	Label          string   `json:"label"`
	URL            string   `json:"url"`
	Descriptor     string   `json:"descriptor,omitempty"`
	NotifyOnUpdate bool     `json:"notify_on_update"`
	NotifyOnError  bool     `json:"notify_on_error"`
}

// VersionRecord is the cached last-known version for a source.
// On disk it is two lines: the version, then the date in DateLayout.
type VersionRecord struct {
	Version    string    `json:"version"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LastCheck records the most recent run of any checker. Every run
// overwrites it, whichever source ran last wins.
type LastCheck struct {
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
}

// File layouts for VersionRecord and LastCheck, kept readable for the
// dashboard (month-day-year, local time).
const (
	DateLayout      = "01-02-2006"
	TimestampLayout = "01-02-2006 15:04:05"
)
