package poller

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"parkpulse/internal/queue"
)

// Poller drives the periodic refresh cycle: fetch the feed on a fixed
// interval and hand the batch to the refresh queue. A run that fails leaves
// the previously published snapshot serving traffic; the next tick tries
// again. A startup run warms the engine before the first tick.
type Poller struct {
	source   Source
	queue    *queue.RefreshQueue
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a poller that fetches from source every interval.
func NewPoller(source Source, q *queue.RefreshQueue, interval time.Duration, logger *logrus.Logger) *Poller {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Poller{
		source:   source,
		queue:    q,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Poller) run() {
	defer p.wg.Done()

	p.logger.Info("Running startup feed fetch")
	p.runOnce()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.runOnce()
		}
	}
}

// runOnce performs a single fetch-and-queue cycle.
func (p *Poller) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	records, err := p.source.Fetch(ctx)
	if err != nil {
		p.logger.WithError(err).Error("Feed fetch failed, keeping previous snapshot")
		return
	}

	if err := p.queue.Push(records); err != nil {
		if err == queue.ErrRefreshPending {
			p.logger.WithField("record_count", len(records)).Info("Refresh already pending, batch coalesced")
		} else {
			p.logger.WithError(err).Error("Failed to queue refresh batch")
		}
		return
	}

	p.logger.WithField("record_count", len(records)).Info("Queued feed batch for refresh")
}

// Stop gracefully stops the polling loop.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
