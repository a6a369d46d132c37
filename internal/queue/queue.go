package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"parkpulse/internal/ingest"
)

var (
	ErrRefreshPending = errors.New("a refresh is already pending")
	ErrQueueClosed    = errors.New("queue is closed")
)

// RefreshQueue hands record batches from producers (the poller, the manual
// refresh endpoint) to the refresh worker. The buffer is deliberately small:
// when a batch is already waiting, Push fails with ErrRefreshPending and the
// caller drops its batch, coalescing redundant refresh requests into the one
// already queued.
type RefreshQueue struct {
	items    chan []ingest.RawRecord
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]ingest.RawRecord) error
}

// NewRefreshQueue creates a queue with the given buffer size; 1 gives the
// intended coalescing behavior.
func NewRefreshQueue(bufferSize int, logger *logrus.Logger) *RefreshQueue {
	return &RefreshQueue{
		items:    make(chan []ingest.RawRecord, bufferSize),
		done:     make(chan struct{}),
		logger:   logger,
		handlers: make([]func([]ingest.RawRecord) error, 0),
	}
}

// Push queues a batch of raw records for the next refresh cycle.
func (q *RefreshQueue) Push(records []ingest.RawRecord) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- records:
		q.logger.WithField("record_count", len(records)).Debug("Queued refresh batch")
		return nil
	default:
		return ErrRefreshPending
	}
}

// Subscribe adds a handler that will be called with each queued batch.
func (q *RefreshQueue) Subscribe(handler func([]ingest.RawRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins draining the queue in a background goroutine.
func (q *RefreshQueue) Start() {
	go q.process()
}

func (q *RefreshQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

func (q *RefreshQueue) processBatch(batch []ingest.RawRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Refresh handler failed")
		}
	}
}

// Close stops the queue and prevents new batches from being added.
func (q *RefreshQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

// Len returns the number of batches waiting in the queue.
func (q *RefreshQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *RefreshQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
