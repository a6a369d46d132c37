package models

import "time"

// Snapshot is an immutable, versioned view of every known bay. Once published
// its contents never change; a refresh always produces a new Snapshot.
type Snapshot struct {
	Version    uint64    `json:"version"`
	CapturedAt time.Time `json:"captured_at"`
	Bays       []Bay     `json:"bays"`
}

// RefreshResult reports the outcome of a completed refresh cycle.
type RefreshResult struct {
	Version        uint64 `json:"version"`
	BayCount       int    `json:"bay_count"`
	DroppedRecords int    `json:"dropped_records"`
	DurationMs     int64  `json:"duration_ms"`
}
