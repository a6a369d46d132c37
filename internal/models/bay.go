package models

import (
	"encoding/json"
	"time"
)

// BayStatus is the normalized occupancy state of a parking bay.
type BayStatus int

const (
	StatusUnknown BayStatus = iota
	StatusAvailable
	StatusOccupied
)

// String returns the string representation of a BayStatus
func (s BayStatus) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusOccupied:
		return "Occupied"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the status as its display string.
func (s BayStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status display string; unrecognized values map to
// Unknown rather than failing the whole payload.
func (s *BayStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Available":
		*s = StatusAvailable
	case "Occupied":
		*s = StatusOccupied
	default:
		*s = StatusUnknown
	}
	return nil
}

type Bay struct {
	KerbsideID  string    `json:"kerbside_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Street      string    `json:"street"`
	ZoneNumber  string    `json:"zone_number,omitempty"`
	Status      BayStatus `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

type OverviewStats struct {
	TotalBays       int       `json:"total_bays"`
	AvailableBays   int       `json:"available_bays"`
	OccupiedBays    int       `json:"occupied_bays"`
	UnknownBays     int       `json:"unknown_bays"`
	OccupancyRatio  float64   `json:"occupancy_ratio"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	CapturedAt      time.Time `json:"captured_at"`
}

type StreetSummary struct {
	Street         string  `json:"street"`
	TotalBays      int     `json:"total_bays"`
	AvailableBays  int     `json:"available_bays"`
	OccupiedBays   int     `json:"occupied_bays"`
	OccupancyRatio float64 `json:"occupancy_ratio"`
}

type HeatmapCell struct {
	Row            int     `json:"row"`
	Col            int     `json:"col"`
	MinLat         float64 `json:"min_lat"`
	MaxLat         float64 `json:"max_lat"`
	MinLng         float64 `json:"min_lng"`
	MaxLng         float64 `json:"max_lng"`
	BayCount       int     `json:"bay_count"`
	AvailableCount int     `json:"available_count"`
	OccupancyRatio float64 `json:"occupancy_ratio"`
}

type NearbyResult struct {
	Bay            Bay     `json:"bay"`
	DistanceMeters float64 `json:"distance_meters"`
}

// NearbyResponse is the envelope for a nearby search. Truncated is set when
// more bays matched than the configured cap; TimedOut is set when the caller's
// deadline expired before the full candidate set was ranked.
type NearbyResponse struct {
	Results      []NearbyResult `json:"results"`
	CenterLat    float64        `json:"center_lat"`
	CenterLng    float64        `json:"center_lng"`
	RadiusMeters float64        `json:"radius_meters"`
	Truncated    bool           `json:"truncated"`
	TimedOut     bool           `json:"timed_out"`
}
