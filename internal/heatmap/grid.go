package heatmap

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"parkpulse/internal/models"
	"parkpulse/internal/stats"
)

const metersPerDegreeLat = 111320.0

// cellKey identifies one grid cell within the region tiling.
type cellKey struct {
	row int
	col int
}

// steps returns the latitude and longitude degree size of one cell. The
// longitude step is fixed from the region's origin latitude so that cell
// assignment is a pure function of coordinate, region and cell size.
func steps(region orb.Bound, cellSizeMeters float64) (latStep, lngStep float64) {
	latStep = cellSizeMeters / metersPerDegreeLat
	cosOrigin := math.Cos(region.Min.Y() * math.Pi / 180)
	if cosOrigin < 1e-6 {
		cosOrigin = 1e-6
	}
	lngStep = cellSizeMeters / (metersPerDegreeLat * cosOrigin)
	return latStep, lngStep
}

// BuildGrid buckets the bays into a fixed tiling of the region and scores
// each cell. Only cells that contain at least one bay are emitted, ordered by
// row then column. Rebuilding from the same inputs yields identical output.
func BuildGrid(bays []models.Bay, region orb.Bound, cellSizeMeters float64) []models.HeatmapCell {
	if cellSizeMeters <= 0 {
		return nil
	}

	latStep, lngStep := steps(region, cellSizeMeters)
	originLat := region.Min.Y()
	originLng := region.Min.X()

	type counts struct {
		total     int
		available int
	}
	cells := make(map[cellKey]*counts)

	for _, bay := range bays {
		key := cellKey{
			row: int(math.Floor((bay.Latitude - originLat) / latStep)),
			col: int(math.Floor((bay.Longitude - originLng) / lngStep)),
		}
		c := cells[key]
		if c == nil {
			c = &counts{}
			cells[key] = c
		}
		c.total++
		if bay.Status == models.StatusAvailable {
			c.available++
		}
	}

	out := make([]models.HeatmapCell, 0, len(cells))
	for key, c := range cells {
		out = append(out, models.HeatmapCell{
			Row:            key.row,
			Col:            key.col,
			MinLat:         originLat + float64(key.row)*latStep,
			MaxLat:         originLat + float64(key.row+1)*latStep,
			MinLng:         originLng + float64(key.col)*lngStep,
			MaxLng:         originLng + float64(key.col+1)*lngStep,
			BayCount:       c.total,
			AvailableCount: c.available,
			OccupancyRatio: stats.Ratio(c.available, c.total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
