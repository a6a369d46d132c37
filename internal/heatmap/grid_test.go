package heatmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkpulse/internal/models"
)

var region = orb.Bound{
	Min: orb.Point{144.93, -37.84},
	Max: orb.Point{144.99, -37.79},
}

func gridBay(id string, lat, lng float64, status models.BayStatus) models.Bay {
	return models.Bay{KerbsideID: id, Latitude: lat, Longitude: lng, Status: status}
}

func TestBuildGrid(t *testing.T) {
	bays := []models.Bay{
		// Two bays a few meters apart share a 150 m cell.
		gridBay("1", -37.8136, 144.9631, models.StatusAvailable),
		gridBay("2", -37.81362, 144.96312, models.StatusOccupied),
		// A bay far across the region lands elsewhere.
		gridBay("3", -37.7950, 144.9850, models.StatusAvailable),
	}

	cells := BuildGrid(bays, region, 150)
	require.Len(t, cells, 2)

	var together *models.HeatmapCell
	for i := range cells {
		if cells[i].BayCount == 2 {
			together = &cells[i]
		}
	}
	require.NotNil(t, together)
	assert.Equal(t, 1, together.AvailableCount)
	assert.Equal(t, 0.5, together.OccupancyRatio)

	// Cell bounds contain the bays that were assigned to it.
	for _, id := range []string{"1", "2"} {
		for _, b := range bays {
			if b.KerbsideID != id {
				continue
			}
			assert.GreaterOrEqual(t, b.Latitude, together.MinLat)
			assert.Less(t, b.Latitude, together.MaxLat)
			assert.GreaterOrEqual(t, b.Longitude, together.MinLng)
			assert.Less(t, b.Longitude, together.MaxLng)
		}
	}
}

func TestBuildGrid_Deterministic(t *testing.T) {
	bays := []models.Bay{
		gridBay("1", -37.8136, 144.9631, models.StatusAvailable),
		gridBay("2", -37.8000, 144.9700, models.StatusOccupied),
		gridBay("3", -37.8200, 144.9500, models.StatusUnknown),
	}

	first := BuildGrid(bays, region, 200)
	second := BuildGrid(bays, region, 200)
	assert.Equal(t, first, second)

	// Output is ordered by row, then column.
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		less := prev.Row < cur.Row || (prev.Row == cur.Row && prev.Col < cur.Col)
		assert.True(t, less, "cells out of order at %d", i)
	}
}

func TestBuildGrid_OnlyNonEmptyCells(t *testing.T) {
	bays := []models.Bay{gridBay("1", -37.8136, 144.9631, models.StatusAvailable)}

	cells := BuildGrid(bays, region, 100)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].BayCount)
	assert.Equal(t, 1.0, cells[0].OccupancyRatio)
}

func TestBuildGrid_EmptyAndInvalid(t *testing.T) {
	assert.Empty(t, BuildGrid(nil, region, 150))
	assert.Nil(t, BuildGrid([]models.Bay{gridBay("1", -37.8, 144.95, models.StatusAvailable)}, region, 0))
	assert.Nil(t, BuildGrid([]models.Bay{gridBay("1", -37.8, 144.95, models.StatusAvailable)}, region, -10))
}

func TestBuildGrid_AllOccupiedCellRatioZero(t *testing.T) {
	bays := []models.Bay{
		gridBay("1", -37.8136, 144.9631, models.StatusOccupied),
		gridBay("2", -37.81361, 144.96311, models.StatusOccupied),
	}

	cells := BuildGrid(bays, region, 150)
	require.Len(t, cells, 1)
	assert.Equal(t, 2, cells[0].BayCount)
	assert.Equal(t, 0, cells[0].AvailableCount)
	assert.Equal(t, 0.0, cells[0].OccupancyRatio)
}
