package history

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRecorderWorkers = 4
	defaultRecorderQueue   = 256
)

// Recorder writes records on a fixed pool of background workers. Failures
// are logged and never reach the caller. When the queue is full the record
// is dropped and logged rather than blocking the request.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Record
	wg     sync.WaitGroup
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return newRecorder(store, logger, defaultRecorderWorkers, defaultRecorderQueue)
}

func newRecorder(store Store, logger *slog.Logger, workers, queue int) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:   store,
		logger:  logger,
		timeout: 5 * time.Second,
		queue:   make(chan Record, queue),
	}
	if store == nil {
		r.closed = true
		return r
	}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.work()
	}
	return r
}

func (r *Recorder) work() {
	defer r.wg.Done()
	for rec := range r.queue {
		r.write(rec)
	}
}

func (r *Recorder) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.Append(ctx, rec); err != nil {
		r.logger.Error("failed to record prediction",
			"error", err,
			"id", rec.ID,
			"user_id", rec.UserID,
			"disease", rec.Disease,
		)
	}
}

// Record queues rec for persistence and returns immediately. It is a no-op
// on a nil Recorder, one without a store, or after Close.
func (r *Recorder) Record(rec Record) {
	if r == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		if r.store != nil {
			r.logger.Warn("history recorder closed, dropping record", "disease", rec.Disease, "user_id", rec.UserID)
		}
		return
	}

	select {
	case r.queue <- rec:
	default:
		r.logger.Error("history queue full, dropping record",
			"id", rec.ID,
			"user_id", rec.UserID,
			"disease", rec.Disease,
		)
	}
}

// Close stops accepting records and waits for queued writes.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
