// Package snapshot runs the periodic timeline capture: at most one
// snapshot per UTC calendar day per (mode, root) pair.
package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
	"github.com/kailas-cloud/metaqual/internal/metrics"
)

// Snapshotter computes and persists one matrix snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context, nodeID string, mode matrix.Mode, ts int64) error
}

// Worker ticks on an interval and captures snapshots for every
// configured root in both orientations. The timeline's primary key
// makes a repeated (mode, root, day) capture a silent no-op, so a
// restart inside the same day cannot duplicate history.
type Worker struct {
	svc      Snapshotter
	roots    []string
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	done chan struct{}
}

// NewWorker creates a snapshot worker for the given collection roots.
func NewWorker(svc Snapshotter, roots []string, interval time.Duration, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		svc:      svc,
		roots:    roots,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start launches the capture loop. One capture pass runs immediately so
// a freshly deployed service does not wait a full interval for its
// first snapshot. The loop stops when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.capture(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.capture(ctx)
			}
		}
	}()
}

// Wait blocks until the loop has exited.
func (w *Worker) Wait() { <-w.done }

// capture takes one pass over every (mode, root) pair. The timestamp is
// truncated to the UTC day start, so all captures within one day share
// a key and only the first one writes. A failed pair is logged and left
// for the next tick; it never aborts the remaining pairs.
func (w *Worker) capture(ctx context.Context) {
	ts := dayStart(w.now())
	for _, mode := range []matrix.Mode{matrix.ModeCollections, matrix.ModeSources} {
		for _, root := range w.roots {
			if ctx.Err() != nil {
				return
			}
			if err := w.svc.Snapshot(ctx, root, mode, ts); err != nil {
				metrics.SnapshotRuns.WithLabelValues(string(mode), "error").Inc()
				w.logger.Warn("snapshot capture failed",
					zap.String("mode", string(mode)),
					zap.String("node_id", root),
					zap.Int64("ts", ts),
					zap.Error(err),
				)
				continue
			}
			metrics.SnapshotRuns.WithLabelValues(string(mode), "ok").Inc()
			w.logger.Debug("snapshot captured",
				zap.String("mode", string(mode)),
				zap.String("node_id", root),
				zap.Int64("ts", ts),
			)
		}
	}
}

// dayStart truncates to 00:00 UTC of the wall-clock day.
func dayStart(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}
