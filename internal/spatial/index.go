package spatial

import (
	"context"
	"errors"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"parkpulse/internal/models"
)

var (
	// ErrInvalidCoordinate marks a bay whose coordinate falls outside the
	// configured service region.
	ErrInvalidCoordinate = errors.New("coordinate outside service region")
)

// Bays are points, but the R-tree stores rectangles; give every entry a tiny
// positive extent.
const pointExtent = 1e-7

type indexedBay struct {
	bay  *models.Bay
	rect rtreego.Rect
}

func (b *indexedBay) Bounds() rtreego.Rect {
	return b.rect
}

// Index answers radius and nearest-neighbor queries over one snapshot's bays.
// It is built once per refresh and never mutated afterwards, so it is safe
// for concurrent readers.
type Index struct {
	tree *rtreego.Rtree
	bays []models.Bay
}

// BuildIndex validates the bays against the service region and indexes the
// survivors. Out-of-region bays are dropped and logged, never fatal: one
// corrupt record must not block a refresh. Returns the index and the number
// of dropped bays.
func BuildIndex(bays []models.Bay, region orb.Bound, logger *logrus.Logger) (*Index, int) {
	kept := make([]models.Bay, 0, len(bays))
	dropped := 0

	for _, bay := range bays {
		if !region.Contains(orb.Point{bay.Longitude, bay.Latitude}) {
			dropped++
			logger.WithError(ErrInvalidCoordinate).WithFields(logrus.Fields{
				"kerbside_id": bay.KerbsideID,
				"latitude":    bay.Latitude,
				"longitude":   bay.Longitude,
			}).Warn("Dropping bay during index build")
			continue
		}
		kept = append(kept, bay)
	}

	idx := &Index{bays: kept}
	if len(kept) == 0 {
		return idx, dropped
	}

	entries := make([]rtreego.Spatial, 0, len(kept))
	for i := range kept {
		rect, err := rtreego.NewRect(
			rtreego.Point{kept[i].Latitude, kept[i].Longitude},
			[]float64{pointExtent, pointExtent},
		)
		if err != nil {
			// Cannot happen with positive extents; skip rather than panic.
			continue
		}
		entries = append(entries, &indexedBay{bay: &kept[i], rect: rect})
	}
	idx.tree = rtreego.NewTree(2, 25, 50, entries...)
	return idx, dropped
}

// Bays returns the validated bays backing the index, in build order.
func (idx *Index) Bays() []models.Bay {
	return idx.bays
}

// Len returns the number of indexed bays.
func (idx *Index) Len() int {
	return len(idx.bays)
}

// QueryRadius returns every bay whose great-circle distance to the point is
// at most radiusMeters, with the computed distance attached. The R-tree
// rectangle search over-selects; an exact distance check filters the rest.
// The second return value reports whether the context deadline cut the scan
// short, in which case the results cover only part of the candidate set.
func (idx *Index) QueryRadius(ctx context.Context, lat, lng, radiusMeters float64) ([]models.NearbyResult, bool) {
	if idx.tree == nil || radiusMeters <= 0 {
		return nil, false
	}

	minLat, minLng, maxLat, maxLng := boundingBox(lat, lng, radiusMeters)
	rect, err := rtreego.NewRect(
		rtreego.Point{minLat, minLng},
		[]float64{maxLat - minLat, maxLng - minLng},
	)
	if err != nil {
		return nil, false
	}

	candidates := idx.tree.SearchIntersect(rect)
	results := make([]models.NearbyResult, 0, len(candidates))
	for i, item := range candidates {
		// Deadline checks are batched; an exact distance per candidate is the
		// only per-item cost.
		if i%64 == 0 && ctx.Err() != nil {
			return results, true
		}
		entry := item.(*indexedBay)
		d := Distance(lat, lng, entry.bay.Latitude, entry.bay.Longitude)
		if d <= radiusMeters {
			results = append(results, models.NearbyResult{Bay: *entry.bay, DistanceMeters: d})
		}
	}
	return results, false
}

// Nearest returns up to k bays closest to the point, re-ranked by exact
// distance. The R-tree neighbor search ranks by rectangle distance, which for
// point extents tracks the exact ordering closely but not perfectly.
func (idx *Index) Nearest(lat, lng float64, k int) []models.NearbyResult {
	if idx.tree == nil || k <= 0 {
		return nil
	}

	neighbors := idx.tree.NearestNeighbors(k, rtreego.Point{lat, lng})
	results := make([]models.NearbyResult, 0, len(neighbors))
	for _, item := range neighbors {
		if item == nil {
			break
		}
		entry := item.(*indexedBay)
		results = append(results, models.NearbyResult{
			Bay:            *entry.bay,
			DistanceMeters: Distance(lat, lng, entry.bay.Latitude, entry.bay.Longitude),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceMeters != results[j].DistanceMeters {
			return results[i].DistanceMeters < results[j].DistanceMeters
		}
		return results[i].Bay.KerbsideID < results[j].Bay.KerbsideID
	})
	return results
}
