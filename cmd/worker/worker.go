package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"depot/pkg/logger"
)

// Relay drains the transactional outbox.
type Relay interface {
	ProcessBatch(ctx context.Context) (int, error)
	MoveToDLQ(ctx context.Context) (int64, error)
}

// Cleaner removes expired idempotency keys.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Intervals controls how often each job runs.
type Intervals struct {
	Poll    time.Duration
	DLQ     time.Duration
	Cleanup time.Duration
}

// Worker runs the periodic background jobs.
type Worker struct {
	relay     Relay
	cleaner   Cleaner
	intervals Intervals
	log       *logger.Logger
}

// NewWorker creates a worker.
func NewWorker(relay Relay, cleaner Cleaner, intervals Intervals, log *logger.Logger) *Worker {
	return &Worker{
		relay:     relay,
		cleaner:   cleaner,
		intervals: intervals,
		log:       log.WithComponent("worker"),
	}
}

// Run blocks until ctx is cancelled. Job errors are logged, never fatal.
func (w *Worker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		every(gctx, w.intervals.Poll, w.drainOutbox)
		return nil
	})
	g.Go(func() error {
		every(gctx, w.intervals.DLQ, w.moveToDLQ)
		return nil
	})
	g.Go(func() error {
		every(gctx, w.intervals.Cleanup, w.cleanupIdempotency)
		return nil
	})
	return g.Wait()
}

func every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// drainOutbox keeps relaying until a batch comes back empty.
func (w *Worker) drainOutbox(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		w.log.Debugw("relayed outbox batch", "count", n)
	}
}

func (w *Worker) moveToDLQ(ctx context.Context) {
	n, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("move to dlq failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Warnw("outbox messages moved to dlq", "count", n)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.cleaner.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
