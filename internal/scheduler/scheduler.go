// Package scheduler periodically executes draws whose scheduled time has
// passed. It is the background counterpart to the organizer's manual
// execute action; both call the same coordinator entry point.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/draw"
)

// retryAttempts bounds re-execution on transient persistence failures.
// Business-rule failures (not found, too few participants, already
// completed) are never retried; the draw is logged and skipped.
const retryAttempts = 3

// Scheduler scans for due draws on a fixed interval.
type Scheduler struct {
	db       *database.DB
	executor *draw.Service
	interval time.Duration
}

// New creates a Scheduler. interval <= 0 defaults to one minute.
func New(db *database.DB, executor *draw.Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{db: db, executor: executor, interval: interval}
}

// Run blocks, scanning on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("scheduler: scanning every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler: stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes every currently due draw. Exposed separately so tests
// and one-shot jobs can trigger a scan without the ticker.
func (s *Scheduler) RunOnce(ctx context.Context) {
	due, err := s.db.ListDue(time.Now().UTC())
	if err != nil {
		log.Printf("scheduler: list due draws: %v", err)
		return
	}

	for _, d := range due {
		results, err := s.executor.ExecuteWithRetry(ctx, d.ID, retryAttempts)
		switch {
		case err == nil:
			log.Printf("scheduler: executed draw %s (%d matches)", d.ID, len(results))
		case errors.Is(err, draw.ErrTooFewParticipants):
			// Leave the draw alone; it will be picked up again
			// once enough people have joined, or cancelled by
			// its organizer.
			log.Printf("scheduler: draw %s not ready: %v", d.ID, err)
		case errors.Is(err, draw.ErrDrawCompleted):
			// A concurrent manual execution won the race.
			log.Printf("scheduler: draw %s already completed", d.ID)
		default:
			log.Printf("scheduler: draw %s failed: %v", d.ID, err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
