package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"parkpulse/config"
	"parkpulse/internal/heatmap"
	"parkpulse/internal/ingest"
	"parkpulse/internal/metrics"
	"parkpulse/internal/models"
	"parkpulse/internal/spatial"
	"parkpulse/internal/stats"
)

var (
	// ErrInvalidQuery is returned for malformed query parameters; the query
	// yields no partial result.
	ErrInvalidQuery = errors.New("invalid query parameters")
)

// snapshotState bundles a published snapshot with the read models derived
// from it. The whole bundle is swapped in one atomic store so readers never
// observe a snapshot paired with another snapshot's index or aggregates.
type snapshotState struct {
	snapshot *models.Snapshot
	index    *spatial.Index
	overview models.OverviewStats
	streets  []models.StreetSummary
}

// Engine owns the published snapshot lifecycle and answers all queries
// against the most recently published state. One writer (Refresh) may run
// concurrently with any number of readers; readers never block on a refresh.
type Engine struct {
	cfg    *config.Config
	region orb.Bound
	logger *logrus.Logger

	current   atomic.Pointer[snapshotState]
	refreshMu sync.Mutex
	version   atomic.Uint64
}

// NewEngine creates an engine with an empty published snapshot so queries
// are answerable before the first refresh completes.
func NewEngine(cfg *config.Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	e := &Engine{
		cfg:    cfg,
		region: cfg.Bound(),
		logger: logger,
	}

	empty := &models.Snapshot{Version: 0, CapturedAt: time.Now().UTC(), Bays: nil}
	idx, _ := spatial.BuildIndex(nil, e.region, logger)
	overview, streets := stats.Aggregate(nil, 0, empty.CapturedAt)
	e.current.Store(&snapshotState{
		snapshot: empty,
		index:    idx,
		overview: overview,
		streets:  streets,
	})
	return e
}

// Refresh builds a new snapshot from raw feed records and publishes it.
// Building happens against private state while readers keep serving the
// previous snapshot; publication is a single pointer swap. On any failure
// the previously published snapshot stays live and untouched. Concurrent
// callers are serialized; identical input produces identical content under a
// new version number.
func (e *Engine) Refresh(ctx context.Context, records []ingest.RawRecord) (models.RefreshResult, error) {
	start := time.Now()

	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	if err := ctx.Err(); err != nil {
		metrics.RefreshFailuresTotal.Inc()
		return models.RefreshResult{}, err
	}

	capturedAt := time.Now().UTC()
	bays, droppedIngest, err := ingest.Normalize(records, capturedAt, e.logger)
	if err != nil {
		metrics.RefreshFailuresTotal.Inc()
		e.logger.WithError(err).Error("Refresh rejected, previous snapshot stays live")
		return models.RefreshResult{}, err
	}

	index, droppedRegion := spatial.BuildIndex(bays, e.region, e.logger)
	kept := index.Bays()
	if len(kept) == 0 {
		metrics.RefreshFailuresTotal.Inc()
		e.logger.Error("Refresh rejected: every record fell outside the service region")
		return models.RefreshResult{}, fmt.Errorf("no bays inside service region: %w", ingest.ErrIngest)
	}

	version := e.version.Add(1)
	overview, streets := stats.Aggregate(kept, version, capturedAt)

	e.current.Store(&snapshotState{
		snapshot: &models.Snapshot{Version: version, CapturedAt: capturedAt, Bays: kept},
		index:    index,
		overview: overview,
		streets:  streets,
	})

	dropped := droppedIngest + droppedRegion
	result := models.RefreshResult{
		Version:        version,
		BayCount:       len(kept),
		DroppedRecords: dropped,
		DurationMs:     time.Since(start).Milliseconds(),
	}

	metrics.RefreshesTotal.Inc()
	metrics.DroppedRecordsTotal.Add(float64(dropped))
	metrics.PublishedBays.Set(float64(len(kept)))
	metrics.RefreshDurationMs.Observe(float64(result.DurationMs))

	e.logger.WithFields(logrus.Fields{
		"version":         version,
		"bay_count":       len(kept),
		"dropped_records": dropped,
		"duration_ms":     result.DurationMs,
	}).Info("Published new snapshot")
	return result, nil
}

// Snapshot returns the currently published snapshot.
func (e *Engine) Snapshot() *models.Snapshot {
	return e.current.Load().snapshot
}

// CurrentStatus returns the current snapshot's bays, optionally filtered to a
// bounding box and capped to limit (0 means no limit).
func (e *Engine) CurrentStatus(bounds *orb.Bound, limit int) []models.Bay {
	snap := e.current.Load().snapshot

	bays := snap.Bays
	if bounds != nil {
		filtered := make([]models.Bay, 0, len(bays))
		for _, bay := range bays {
			if bounds.Contains(orb.Point{bay.Longitude, bay.Latitude}) {
				filtered = append(filtered, bay)
			}
		}
		bays = filtered
	}
	if limit > 0 && len(bays) > limit {
		bays = bays[:limit]
	}
	return bays
}

// Overview returns the cached overview statistics of the current snapshot.
func (e *Engine) Overview() models.OverviewStats {
	return e.current.Load().overview
}

// Streets returns the cached per-street rollups of the current snapshot,
// busiest streets first.
func (e *Engine) Streets() []models.StreetSummary {
	return e.current.Load().streets
}

// Heatmap buckets the current snapshot into cells of the requested size.
func (e *Engine) Heatmap(cellSizeMeters float64) ([]models.HeatmapCell, error) {
	if !isFinite(cellSizeMeters) || cellSizeMeters < e.cfg.Query.MinHeatmapCellMeters {
		return nil, fmt.Errorf("cell size must be at least %.0f meters: %w",
			e.cfg.Query.MinHeatmapCellMeters, ErrInvalidQuery)
	}
	snap := e.current.Load().snapshot
	return heatmap.BuildGrid(snap.Bays, e.region, cellSizeMeters), nil
}

// FindNearby returns bays within radiusMeters of the point, closest first,
// ties broken by kerbside id. The result is capped at the configured maximum;
// when more bays matched, the closest ones are kept and Truncated is set.
// The whole call reads exactly one published snapshot, so a concurrent
// refresh can never mix old and new data within one response.
func (e *Engine) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) (models.NearbyResponse, error) {
	start := time.Now()

	resp := models.NearbyResponse{
		CenterLat:    lat,
		CenterLng:    lng,
		RadiusMeters: radiusMeters,
	}

	if !isFinite(lat) || !isFinite(lng) || !isFinite(radiusMeters) {
		return resp, fmt.Errorf("coordinates and radius must be finite: %w", ErrInvalidQuery)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return resp, fmt.Errorf("coordinates out of range: %w", ErrInvalidQuery)
	}
	if radiusMeters <= 0 {
		return resp, fmt.Errorf("radius must be positive: %w", ErrInvalidQuery)
	}

	state := e.current.Load()
	results, timedOut := state.index.QueryRadius(ctx, lat, lng, radiusMeters)

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceMeters != results[j].DistanceMeters {
			return results[i].DistanceMeters < results[j].DistanceMeters
		}
		return results[i].Bay.KerbsideID < results[j].Bay.KerbsideID
	})

	if max := e.cfg.Query.MaxNearbyResults; len(results) > max {
		results = results[:max]
		resp.Truncated = true
		metrics.NearbyTruncatedTotal.Inc()
	}
	resp.Results = results
	resp.TimedOut = timedOut

	metrics.NearbyQueriesTotal.Inc()
	metrics.NearbyDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	return resp, nil
}

// Version returns the version of the currently published snapshot.
func (e *Engine) Version() uint64 {
	return e.current.Load().snapshot.Version
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
