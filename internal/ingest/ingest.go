package ingest

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"parkpulse/internal/models"
)

var (
	// ErrIngest is returned when a refresh input contains no usable records.
	ErrIngest = errors.New("refresh input contains no usable records")
)

// RawRecord is one row of the upstream sensor feed before normalization.
type RawRecord struct {
	KerbsideID      string  `json:"kerbside_id"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	RoadSegment     string  `json:"road_segment_description"`
	ZoneNumber      string  `json:"zone_number"`
	Status          string  `json:"status_description"`
	StatusTimestamp string  `json:"status_timestamp"`
}

// timestampLayouts are tried in order when parsing feed timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeStatus maps the feed's status descriptions onto the engine's
// three-state model. The live feed reports "Present" for an occupied bay and
// "Unoccupied" for a free one; anything else is treated as unknown.
func NormalizeStatus(raw string) models.BayStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unoccupied", "available":
		return models.StatusAvailable
	case "present", "occupied":
		return models.StatusOccupied
	default:
		return models.StatusUnknown
	}
}

// Normalize converts raw feed records into bays, dropping records that cannot
// be used: missing identifiers, non-finite coordinates, and duplicate
// identifiers within the same batch. A single bad record never aborts the
// whole batch. It returns the kept bays and the number of dropped records;
// ErrIngest is returned only when nothing at all survived.
func Normalize(records []RawRecord, capturedAt time.Time, logger *logrus.Logger) ([]models.Bay, int, error) {
	if len(records) == 0 {
		return nil, 0, ErrIngest
	}

	bays := make([]models.Bay, 0, len(records))
	seen := make(map[string]bool, len(records))
	dropped := 0

	for _, rec := range records {
		id := strings.TrimSpace(rec.KerbsideID)
		if id == "" {
			dropped++
			logger.Warn("Dropping record without kerbside id")
			continue
		}
		if seen[id] {
			dropped++
			logger.WithField("kerbside_id", id).Warn("Dropping duplicate kerbside id in batch")
			continue
		}
		if !isFinite(rec.Latitude) || !isFinite(rec.Longitude) {
			dropped++
			logger.WithField("kerbside_id", id).Warn("Dropping record with non-finite coordinates")
			continue
		}
		seen[id] = true

		bays = append(bays, models.Bay{
			KerbsideID:  id,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Street:      strings.TrimSpace(rec.RoadSegment),
			ZoneNumber:  strings.TrimSpace(rec.ZoneNumber),
			Status:      NormalizeStatus(rec.Status),
			LastUpdated: parseTimestamp(rec.StatusTimestamp, capturedAt),
		})
	}

	if len(bays) == 0 {
		return nil, dropped, ErrIngest
	}
	return bays, dropped, nil
}

// parseTimestamp parses a feed timestamp, falling back to the capture time
// when the field is absent or unparseable.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return fallback
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
