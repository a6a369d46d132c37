package stats

import (
	"sort"
	"time"

	"parkpulse/internal/models"
)

// Ratio implements the engine-wide occupancy ratio policy: available over
// total, defined as 0 when the total is 0 so a zero-bay rollup never yields
// NaN.
func Ratio(available, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(available) / float64(total)
}

// Aggregate computes the overview statistics and per-street rollups for one
// snapshot's bays in a single pass. It is a pure function of its input:
// calling it twice on the same bays yields identical results, including the
// order of the street list. Bays without a street name count toward the
// overview but are not attributed to any street.
func Aggregate(bays []models.Bay, version uint64, capturedAt time.Time) (models.OverviewStats, []models.StreetSummary) {
	overview := models.OverviewStats{
		TotalBays:       len(bays),
		SnapshotVersion: version,
		CapturedAt:      capturedAt,
	}

	type streetCounts struct {
		total     int
		available int
		occupied  int
	}
	streets := make(map[string]*streetCounts)

	for _, bay := range bays {
		switch bay.Status {
		case models.StatusAvailable:
			overview.AvailableBays++
		case models.StatusOccupied:
			overview.OccupiedBays++
		default:
			overview.UnknownBays++
		}

		if bay.Street == "" {
			continue
		}
		counts := streets[bay.Street]
		if counts == nil {
			counts = &streetCounts{}
			streets[bay.Street] = counts
		}
		counts.total++
		switch bay.Status {
		case models.StatusAvailable:
			counts.available++
		case models.StatusOccupied:
			counts.occupied++
		}
	}

	overview.OccupancyRatio = Ratio(overview.AvailableBays, overview.TotalBays)

	summaries := make([]models.StreetSummary, 0, len(streets))
	for street, counts := range streets {
		summaries = append(summaries, models.StreetSummary{
			Street:         street,
			TotalBays:      counts.total,
			AvailableBays:  counts.available,
			OccupiedBays:   counts.occupied,
			OccupancyRatio: Ratio(counts.available, counts.total),
		})
	}

	// Busiest streets first, names break ties so the order is deterministic.
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalBays != summaries[j].TotalBays {
			return summaries[i].TotalBays > summaries[j].TotalBays
		}
		return summaries[i].Street < summaries[j].Street
	})

	return overview, summaries
}
