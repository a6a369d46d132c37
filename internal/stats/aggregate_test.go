package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkpulse/internal/models"
)

func bay(id, street string, status models.BayStatus) models.Bay {
	return models.Bay{KerbsideID: id, Street: street, Status: status}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(0, 0))
	assert.Equal(t, 0.0, Ratio(5, 0))
	assert.Equal(t, 0.5, Ratio(1, 2))
	assert.Equal(t, 1.0, Ratio(3, 3))
}

func TestAggregate(t *testing.T) {
	capturedAt := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	bays := []models.Bay{
		bay("1", "Collins St", models.StatusAvailable),
		bay("2", "Collins St", models.StatusOccupied),
		bay("3", "Collins St", models.StatusOccupied),
		bay("4", "Swanston St", models.StatusUnknown),
		bay("5", "Swanston St", models.StatusAvailable),
		bay("6", "", models.StatusAvailable), // no street: overview only
	}

	overview, streets := Aggregate(bays, 7, capturedAt)

	assert.Equal(t, 6, overview.TotalBays)
	assert.Equal(t, 3, overview.AvailableBays)
	assert.Equal(t, 2, overview.OccupiedBays)
	assert.Equal(t, 1, overview.UnknownBays)
	assert.Equal(t, overview.TotalBays, overview.AvailableBays+overview.OccupiedBays+overview.UnknownBays)
	assert.Equal(t, 0.5, overview.OccupancyRatio)
	assert.Equal(t, uint64(7), overview.SnapshotVersion)
	assert.Equal(t, capturedAt, overview.CapturedAt)

	require.Len(t, streets, 2)
	assert.Equal(t, "Collins St", streets[0].Street)
	assert.Equal(t, 3, streets[0].TotalBays)
	assert.Equal(t, 1, streets[0].AvailableBays)
	assert.Equal(t, 2, streets[0].OccupiedBays)
	assert.InDelta(t, 1.0/3.0, streets[0].OccupancyRatio, 1e-12)

	assert.Equal(t, "Swanston St", streets[1].Street)
	assert.Equal(t, 2, streets[1].TotalBays)
}

func TestAggregate_Deterministic(t *testing.T) {
	capturedAt := time.Now().UTC()
	bays := []models.Bay{
		bay("1", "B St", models.StatusAvailable),
		bay("2", "A St", models.StatusOccupied),
		bay("3", "C St", models.StatusUnknown),
		bay("4", "A St", models.StatusAvailable),
		bay("5", "B St", models.StatusOccupied),
	}

	overview1, streets1 := Aggregate(bays, 1, capturedAt)
	overview2, streets2 := Aggregate(bays, 1, capturedAt)

	assert.Equal(t, overview1, overview2)
	assert.Equal(t, streets1, streets2)
}

func TestAggregate_TieBreakByName(t *testing.T) {
	bays := []models.Bay{
		bay("1", "B St", models.StatusAvailable),
		bay("2", "A St", models.StatusOccupied),
	}

	_, streets := Aggregate(bays, 1, time.Now())
	require.Len(t, streets, 2)
	assert.Equal(t, "A St", streets[0].Street)
	assert.Equal(t, "B St", streets[1].Street)
}

func TestAggregate_Empty(t *testing.T) {
	overview, streets := Aggregate(nil, 0, time.Now())
	assert.Equal(t, 0, overview.TotalBays)
	assert.Equal(t, 0.0, overview.OccupancyRatio)
	assert.Empty(t, streets)
}

func TestAggregate_AllUnknownStreetStillListed(t *testing.T) {
	bays := []models.Bay{
		bay("1", "Swanston St", models.StatusUnknown),
		bay("2", "Swanston St", models.StatusUnknown),
	}

	_, streets := Aggregate(bays, 1, time.Now())
	require.Len(t, streets, 1)
	assert.Equal(t, "Swanston St", streets[0].Street)
	assert.Equal(t, 2, streets[0].TotalBays)
	assert.Equal(t, 0, streets[0].AvailableBays)
	assert.Equal(t, 0.0, streets[0].OccupancyRatio)
}
