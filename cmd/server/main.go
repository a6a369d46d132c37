package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"parkpulse/config"
	"parkpulse/internal/api"
	"parkpulse/internal/engine"
	"parkpulse/internal/ingest"
	"parkpulse/internal/poller"
	"parkpulse/internal/queue"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded configuration from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logger.WithFields(logrus.Fields{
		"min_lat": cfg.Region.MinLat,
		"max_lat": cfg.Region.MaxLat,
		"min_lng": cfg.Region.MinLng,
		"max_lng": cfg.Region.MaxLng,
	}).Info("Service region configured")

	// Initialize the engine with an empty snapshot
	eng := engine.NewEngine(cfg, logger)

	// Wire the refresh queue: batches pushed by the poller are refreshed in
	// the background, one build at a time.
	refreshQueue := queue.NewRefreshQueue(1, logger)
	refreshQueue.Subscribe(func(records []ingest.RawRecord) error {
		_, err := eng.Refresh(context.Background(), records)
		return err
	})
	refreshQueue.Start()
	defer refreshQueue.Close()

	// Start the feed poller when a feed is configured
	if cfg.Feed.URL != "" {
		source := poller.NewHTTPSource(cfg.Feed.URL, time.Duration(cfg.Feed.FetchTimeoutSeconds)*time.Second)
		feedPoller := poller.NewPoller(source, refreshQueue, time.Duration(cfg.Feed.IntervalSeconds)*time.Second, logger)
		feedPoller.Start()
		defer feedPoller.Stop()
		logger.WithField("feed_url", cfg.Feed.URL).Info("Feed poller started")
	} else {
		logger.Info("No feed URL configured, refreshes come through the API only")
	}

	// Initialize router
	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, eng, cfg)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
