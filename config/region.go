package config

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Bound returns the configured service area as an orb bound.
// orb points are ordered (longitude, latitude).
func (c *Config) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.Region.MinLng, c.Region.MinLat},
		Max: orb.Point{c.Region.MaxLng, c.Region.MaxLat},
	}
}

// Center returns the midpoint of the service area.
func (c *Config) Center() (float64, float64) {
	return (c.Region.MinLat + c.Region.MaxLat) / 2, (c.Region.MinLng + c.Region.MaxLng) / 2
}

// Validate checks that the configured region and limits are usable.
func (c *Config) Validate() error {
	if c.Region.MinLat >= c.Region.MaxLat {
		return fmt.Errorf("invalid region: min latitude %f >= max latitude %f", c.Region.MinLat, c.Region.MaxLat)
	}
	if c.Region.MinLng >= c.Region.MaxLng {
		return fmt.Errorf("invalid region: min longitude %f >= max longitude %f", c.Region.MinLng, c.Region.MaxLng)
	}
	if c.Region.MinLat < -90 || c.Region.MaxLat > 90 {
		return fmt.Errorf("invalid region: latitude out of range")
	}
	if c.Region.MinLng < -180 || c.Region.MaxLng > 180 {
		return fmt.Errorf("invalid region: longitude out of range")
	}
	if c.Query.MaxNearbyResults <= 0 {
		return fmt.Errorf("invalid query config: max nearby results must be positive")
	}
	if c.Query.MinHeatmapCellMeters <= 0 {
		return fmt.Errorf("invalid query config: min heatmap cell size must be positive")
	}
	return nil
}
