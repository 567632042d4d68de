// Package draw orchestrates one full, exactly-once execution of a draw's
// matching: validate state, run the matching engine, persist the results
// atomically, and notify participants after commit.
package draw

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/santasdraw/server/internal/match"
	"github.com/santasdraw/server/internal/notify"
	"github.com/santasdraw/server/pkg/models"
)

// Store is the persistence surface the coordinator needs. *database.DB
// implements it.
type Store interface {
	GetDraw(id string) (*models.Draw, error)
	ListParticipants(drawID string) ([]models.Participant, error)
	SaveMatchResults(ctx context.Context, drawID string, results []models.MatchResult) error
	ListMatchResults(drawID string) ([]models.MatchResult, error)
}

// MinParticipants is the execution policy for organizer-triggered and
// scheduled draws. The matching engine itself handles two members (the
// swap), but every path into ExecuteDraw enforces three: policy is
// deliberately stricter than mechanism.
const MinParticipants = 3

// persistTimeout bounds the results transaction. The matching itself runs
// in memory in microseconds; the insert is the only real I/O suspension
// point, and on expiry it surfaces as a retryable persistence failure.
const persistTimeout = 10 * time.Second

// Service executes draws.
type Service struct {
	db       Store
	engine   *match.Engine
	notifier notify.Notifier
}

// New creates a draw execution service. notifier may be nil, in which case
// no notifications are sent.
func New(db Store, engine *match.Engine, notifier notify.Notifier) *Service {
	return &Service{db: db, engine: engine, notifier: notifier}
}

// ExecuteDraw runs the matching for one draw and persists the results
// exactly once.
//
// The initial status check is a fast path, not the correctness mechanism:
// two workers may both pass it, but the UNIQUE(draw_id, giver_id)
// constraint serializes them at commit time, so at most one worker's
// results become durable. The losing worker gets ErrPersistence and, on
// retry, ErrDrawCompleted.
func (s *Service) ExecuteDraw(ctx context.Context, drawID string) ([]models.MatchResult, error) {
	d, err := s.db.GetDraw(drawID)
	if err != nil {
		return nil, fmt.Errorf("fetch draw %s: %w", drawID, err)
	}
	if d == nil {
		return nil, ErrDrawNotFound
	}
	if d.Status == models.StatusCompleted {
		return nil, ErrDrawCompleted
	}

	participants, err := s.db.ListParticipants(drawID)
	if err != nil {
		return nil, fmt.Errorf("fetch participants for draw %s: %w", drawID, err)
	}
	if len(participants) < MinParticipants {
		return nil, ErrTooFewParticipants
	}

	ids := make([]string, len(participants))
	byID := make(map[string]models.Participant, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	pairs, err := s.engine.Pairs(ids)
	if err != nil {
		// Cannot happen: the participant count was validated above.
		return nil, fmt.Errorf("matching engine: %w", err)
	}

	now := time.Now().UTC()
	results := make([]models.MatchResult, len(pairs))
	for i, pair := range pairs {
		results[i] = models.MatchResult{
			DrawID:     drawID,
			GiverID:    pair.Giver,
			ReceiverID: pair.Receiver,
			CreatedAt:  now,
		}
	}

	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := s.db.SaveMatchResults(persistCtx, drawID, results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("draw executed: id=%s participants=%d matches=%d", drawID, len(participants), len(results))

	s.notifyAll(ctx, d, results, byID)

	return results, nil
}

// notifyAll publishes one notification per match pair. Delivery is
// best-effort: the match transaction has already committed, so failures
// are logged and counted but never undo the draw.
func (s *Service) notifyAll(ctx context.Context, d *models.Draw, results []models.MatchResult, byID map[string]models.Participant) {
	if s.notifier == nil {
		return
	}

	var failed int
	for _, r := range results {
		giver, receiver := byID[r.GiverID], byID[r.ReceiverID]

		n := notify.Notification{
			ID:           uuid.New().String(),
			GiverName:    giver.FullName(),
			GiverEmail:   giver.Email,
			ReceiverName: receiver.FullName(),
		}
		if d.RequireAddress {
			n.ReceiverAddress = receiver.Address
		}
		if d.RequirePhone {
			n.ReceiverPhone = receiver.Phone
		}

		if err := s.notifier.NotifyMatch(ctx, n); err != nil {
			failed++
			log.Printf("notify failed for draw %s giver %s: %v", d.ID, giver.Email, err)
		}
	}
	if failed > 0 {
		log.Printf("draw %s: %d of %d notifications failed", d.ID, failed, len(results))
	}
}

// ExecuteWithRetry calls ExecuteDraw up to attempts times, retrying only on
// persistence failures. Business-rule failures are final, and each retry
// re-runs the status check so a draw completed by a concurrent worker is
// reported as ErrDrawCompleted rather than re-executed.
func (s *Service) ExecuteWithRetry(ctx context.Context, drawID string, attempts int) ([]models.MatchResult, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		results, err := s.ExecuteDraw(ctx, drawID)
		if err == nil {
			return results, nil
		}
		if !errors.Is(err, ErrPersistence) {
			return nil, err
		}

		lastErr = err
		log.Printf("draw %s: persistence failed (attempt %d/%d): %v", drawID, attempt, attempts, err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// Results returns the stored match rows for a draw.
func (s *Service) Results(drawID string) ([]models.MatchResult, error) {
	d, err := s.db.GetDraw(drawID)
	if err != nil {
		return nil, fmt.Errorf("fetch draw %s: %w", drawID, err)
	}
	if d == nil {
		return nil, ErrDrawNotFound
	}
	return s.db.ListMatchResults(drawID)
}
