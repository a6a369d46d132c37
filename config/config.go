package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP server configuration
	Server struct {
		// Port the API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	// Region bounds of the service area (defaults cover the Melbourne CBD)
	Region struct {
		MinLat float64 `env:"REGION_MIN_LAT" envDefault:"-37.84"`
		MaxLat float64 `env:"REGION_MAX_LAT" envDefault:"-37.79"`
		MinLng float64 `env:"REGION_MIN_LNG" envDefault:"144.93"`
		MaxLng float64 `env:"REGION_MAX_LNG" envDefault:"144.99"`
	}

	// Query limits and defaults
	Query struct {
		// Maximum number of results returned by a nearby search
		MaxNearbyResults int `env:"QUERY_MAX_NEARBY_RESULTS" envDefault:"20"`

		// Radius in meters used when a nearby request omits one
		DefaultNearbyRadius float64 `env:"QUERY_DEFAULT_NEARBY_RADIUS" envDefault:"500"`

		// Cell size in meters used when a heatmap request omits one
		DefaultHeatmapCellMeters float64 `env:"QUERY_DEFAULT_HEATMAP_CELL" envDefault:"150"`

		// Smallest accepted heatmap cell size, bounds the grid fan-out
		MinHeatmapCellMeters float64 `env:"QUERY_MIN_HEATMAP_CELL" envDefault:"25"`
	}

	// Feed polling configuration
	Feed struct {
		// URL of the sensor feed; polling is disabled when empty
		URL string `env:"FEED_URL"`

		// Seconds between refresh cycles
		IntervalSeconds int `env:"FEED_INTERVAL_SECONDS" envDefault:"600"`

		// Timeout in seconds for a single feed fetch
		FetchTimeoutSeconds int `env:"FEED_FETCH_TIMEOUT_SECONDS" envDefault:"30"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
