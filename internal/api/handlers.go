package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"parkpulse/config"
	"parkpulse/internal/engine"
	"parkpulse/internal/ingest"
)

type Handler struct {
	engine *engine.Engine
	cfg    *config.Config
	logger *logrus.Logger
}

func NewHandler(eng *engine.Engine, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{
		engine: eng,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCurrentStatus returns the current snapshot's bays, optionally filtered
// by ?bounds=lat1,lng1,lat2,lng2 and capped by ?limit=.
func (h *Handler) GetCurrentStatus(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	// A malformed bounds string is ignored rather than rejected.
	var bounds *orb.Bound
	if raw := c.Query("bounds"); raw != "" {
		if parsed, err := parseBounds(raw); err == nil {
			bounds = parsed
		} else {
			h.logger.WithError(err).Warn("Ignoring malformed bounds parameter")
		}
	}

	bays := h.engine.CurrentStatus(bounds, limit)
	c.JSON(http.StatusOK, gin.H{
		"count": len(bays),
		"data":  bays,
	})
}

// GetOverviewStats returns the overview statistics of the current snapshot.
func (h *Handler) GetOverviewStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Overview())
}

// GetStreetsList returns per-street rollups, busiest streets first.
func (h *Handler) GetStreetsList(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Streets())
}

// FindNearbyParking answers ?lat=&lng=&radius= with the closest bays. An
// optional ?timeout_ms= bounds the search; a timed-out search returns what
// it ranked so far with timed_out set.
func (h *Handler) FindNearbyParking(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required and must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng is required and must be a number"})
		return
	}

	radius := h.cfg.Query.DefaultNearbyRadius
	if raw := c.Query("radius"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a number"})
			return
		}
	}

	ctx := c.Request.Context()
	if raw := c.Query("timeout_ms"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
			defer cancel()
		}
	}

	resp, err := h.engine.FindNearby(ctx, lat, lng, radius)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected nearby query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHeatmap returns occupancy cells for the current snapshot at the
// requested ?cell_size= (meters).
func (h *Handler) GetHeatmap(c *gin.Context) {
	cellSize := h.cfg.Query.DefaultHeatmapCellMeters
	if raw := c.Query("cell_size"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cell_size must be a number"})
			return
		}
		cellSize = parsed
	}

	cells, err := h.engine.Heatmap(cellSize)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected heatmap query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(cells),
		"cells": cells,
	})
}

// TriggerRefresh ingests a JSON array of raw records and publishes a new
// snapshot. Called by the ingestion collaborator, not end users.
func (h *Handler) TriggerRefresh(c *gin.Context) {
	var records []ingest.RawRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		h.logger.WithError(err).Error("Failed to parse refresh payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh payload"})
		return
	}

	result, err := h.engine.Refresh(c.Request.Context(), records)
	if err != nil {
		if errors.Is(err, ingest.ErrIngest) {
			h.logger.WithError(err).Error("Refresh rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health reports liveness plus the currently published snapshot.
func (h *Handler) Health(c *gin.Context) {
	snap := h.engine.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"snapshot_version": snap.Version,
		"bay_count":        len(snap.Bays),
		"captured_at":      snap.CapturedAt,
	})
}

// parseBounds parses "lat1,lng1,lat2,lng2" into a normalized bound.
func parseBounds(raw string) (*orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, errors.New("bounds must be lat1,lng1,lat2,lng2")
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	bound := orb.Bound{
		Min: orb.Point{min(vals[1], vals[3]), min(vals[0], vals[2])},
		Max: orb.Point{max(vals[1], vals[3]), max(vals[0], vals[2])},
	}
	return &bound, nil
}
