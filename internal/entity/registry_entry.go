package entity

import "time"

// RegistryEntry mirrors the `phish_urls` PostgreSQL table schema.
type RegistryEntry struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	FirstSeen     time.Time  `json:"first_seen"`
	LastSeen      time.Time  `json:"last_seen"`
	ReportsCount  int        `json:"reports_count"`
	OnAir         bool       `json:"on_air"`
	Checked       bool       `json:"checked"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

// UpsertOutcome tells a fresh insert from a repeat detection.
type UpsertOutcome string

const (
	UpsertInserted UpsertOutcome = "inserted"
	UpsertBumped   UpsertOutcome = "bumped"
)
