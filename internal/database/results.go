package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/santasdraw/server/pkg/models"
)

// SaveMatchResults persists every match row for a draw and flips the draw to
// completed, all inside one transaction. If any insert trips the
// UNIQUE(draw_id, giver_id) constraint — for example because a concurrent
// execution already committed — the whole transaction rolls back and no
// partial results survive. That constraint, not the caller's status check,
// is what serializes racing executions.
func (db *DB) SaveMatchResults(ctx context.Context, drawID string, results []models.MatchResult) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO match_results (draw_id, giver_id, receiver_id, created_at)
	           VALUES (?, ?, ?, ?)`
	for _, r := range results {
		if _, err := tx.ExecContext(ctx, q, r.DrawID, r.GiverID, r.ReceiverID, r.CreatedAt); err != nil {
			return fmt.Errorf("insert match %s: %w", r.GiverID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE draws SET status = ?, updated_at = ? WHERE id = ?`,
		string(models.StatusCompleted), time.Now().UTC(), drawID)
	if err != nil {
		return fmt.Errorf("complete draw: %w", err)
	}

	return tx.Commit()
}

// ListMatchResults returns every match row for a draw.
func (db *DB) ListMatchResults(drawID string) ([]models.MatchResult, error) {
	const q = `SELECT draw_id, giver_id, receiver_id, created_at FROM match_results WHERE draw_id = ?`
	rows, err := db.conn.Query(q, drawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		var r models.MatchResult
		if err := rows.Scan(&r.DrawID, &r.GiverID, &r.ReceiverID, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetMatchForGiver returns the single match row where the given participant
// is the giver, or nil if the draw has not been executed.
func (db *DB) GetMatchForGiver(drawID, giverID string) (*models.MatchResult, error) {
	const q = `SELECT draw_id, giver_id, receiver_id, created_at FROM match_results
	           WHERE draw_id = ? AND giver_id = ?`
	r := &models.MatchResult{}
	err := db.conn.QueryRow(q, drawID, giverID).Scan(&r.DrawID, &r.GiverID, &r.ReceiverID, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CountMatchResults returns the number of match rows stored for a draw.
func (db *DB) CountMatchResults(drawID string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM match_results WHERE draw_id = ?`, drawID).Scan(&n)
	return n, err
}
