package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/draw"
	"github.com/santasdraw/server/internal/match"
	"github.com/santasdraw/server/pkg/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	f, err := os.CreateTemp("", "scheduler-test-*.db")
	if err != nil {
		t.Fatalf("create temp db: %v", err)
	}
	f.Close()

	db, err := database.New(f.Name())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(f.Name())
	})
	return db
}

func seedScheduled(t *testing.T, db *database.DB, status models.DrawStatus, drawDate *time.Time, count int) *models.Draw {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)

	d := &models.Draw{
		ID:        uuid.New().String(),
		Status:    status,
		DrawType:  models.TypeDynamic,
		DrawDate:  drawDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	participants := make([]models.Participant, count)
	for i := range participants {
		participants[i] = models.Participant{
			ID:        uuid.New().String(),
			DrawID:    d.ID,
			FirstName: "Person",
			LastName:  string(rune('A' + i)),
			Email:     uuid.New().String() + "@example.com",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
	}

	if err := db.CreateDraw(d, participants); err != nil {
		t.Fatalf("CreateDraw: %v", err)
	}
	return d
}

func pastDate() *time.Time {
	d := time.Now().UTC().Add(-time.Hour).Truncate(time.Hour)
	return &d
}

func futureDate() *time.Time {
	d := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	return &d
}

func TestRunOnce_ExecutesDueDraws(t *testing.T) {
	db := setupTestDB(t)
	svc := draw.New(db, match.New(), nil)

	due := seedScheduled(t, db, models.StatusActive, pastDate(), 4)
	notDue := seedScheduled(t, db, models.StatusActive, futureDate(), 4)
	unscheduled := seedScheduled(t, db, models.StatusActive, nil, 4)

	New(db, svc, 0).RunOnce(context.Background())

	got, _ := db.GetDraw(due.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("due draw status = %q, want completed", got.Status)
	}
	n, _ := db.CountMatchResults(due.ID)
	if n != 4 {
		t.Errorf("due draw has %d match rows, want 4", n)
	}

	for _, d := range []*models.Draw{notDue, unscheduled} {
		got, _ := db.GetDraw(d.ID)
		if got.Status != models.StatusActive {
			t.Errorf("draw %s status = %q, want untouched active", d.ID, got.Status)
		}
	}
}

func TestRunOnce_SkipsUnderfilledDraw(t *testing.T) {
	db := setupTestDB(t)
	svc := draw.New(db, match.New(), nil)

	d := seedScheduled(t, db, models.StatusActive, pastDate(), 2)

	New(db, svc, 0).RunOnce(context.Background())

	got, _ := db.GetDraw(d.ID)
	if got.Status != models.StatusActive {
		t.Errorf("status = %q, want active (left for a later scan)", got.Status)
	}
	n, _ := db.CountMatchResults(d.ID)
	if n != 0 {
		t.Errorf("match rows = %d, want 0", n)
	}
}

func TestRunOnce_IdempotentAcrossScans(t *testing.T) {
	db := setupTestDB(t)
	svc := draw.New(db, match.New(), nil)

	d := seedScheduled(t, db, models.StatusActive, pastDate(), 3)

	sched := New(db, svc, 0)
	sched.RunOnce(context.Background())
	sched.RunOnce(context.Background())

	n, _ := db.CountMatchResults(d.ID)
	if n != 3 {
		t.Errorf("match rows = %d after two scans, want 3", n)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	db := setupTestDB(t)
	svc := draw.New(db, match.New(), nil)
	sched := New(db, svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
