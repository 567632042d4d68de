package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/santasdraw/server/pkg/models"
)

const drawColumns = `id, creator_id, status, draw_type, draw_date, require_address, require_phone, invite_code, created_at, updated_at`

func scanDraw(row interface{ Scan(...interface{}) error }) (*models.Draw, error) {
	d := &models.Draw{}
	var creatorID, inviteCode sql.NullString
	var drawDate sql.NullTime
	var status, drawType string

	err := row.Scan(
		&d.ID, &creatorID, &status, &drawType, &drawDate,
		&d.RequireAddress, &d.RequirePhone, &inviteCode,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Reject unknown enum values here rather than letting them leak into
	// transition logic.
	if d.Status, err = models.ParseDrawStatus(status); err != nil {
		return nil, fmt.Errorf("draw %s: %w", d.ID, err)
	}
	if d.DrawType, err = models.ParseDrawType(drawType); err != nil {
		return nil, fmt.Errorf("draw %s: %w", d.ID, err)
	}

	if creatorID.Valid {
		d.CreatorID = creatorID.String
	}
	if inviteCode.Valid {
		d.InviteCode = inviteCode.String
	}
	if drawDate.Valid {
		t := drawDate.Time
		d.DrawDate = &t
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateDraw inserts a draw together with its initial participants in a
// single transaction. Either everything becomes visible or nothing does.
func (db *DB) CreateDraw(draw *models.Draw, participants []models.Participant) error {
	if !draw.Status.Valid() {
		return fmt.Errorf("invalid draw status %q", draw.Status)
	}
	if !draw.DrawType.Valid() {
		return fmt.Errorf("invalid draw type %q", draw.DrawType)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO draws (id, creator_id, status, draw_type, draw_date, require_address, require_phone, invite_code, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(q,
		draw.ID, nullString(draw.CreatorID), string(draw.Status), string(draw.DrawType),
		nullTime(draw.DrawDate), draw.RequireAddress, draw.RequirePhone,
		nullString(draw.InviteCode), draw.CreatedAt, draw.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert draw: %w", err)
	}

	for _, p := range participants {
		if err := insertParticipant(tx, &p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertParticipant(tx *sql.Tx, p *models.Participant) error {
	const q = `INSERT INTO participants (id, draw_id, first_name, last_name, email, address, phone, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, p.ID, p.DrawID, p.FirstName, p.LastName, p.Email, p.Address, p.Phone, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert participant %s: %w", p.Email, err)
	}
	return nil
}

// GetDraw returns a draw by ID, or nil if no such draw exists.
func (db *DB) GetDraw(id string) (*models.Draw, error) {
	q := `SELECT ` + drawColumns + ` FROM draws WHERE id = ?`
	return scanDraw(db.conn.QueryRow(q, id))
}

// GetDrawByInviteCode returns the draw holding the given invite code.
func (db *DB) GetDrawByInviteCode(code string) (*models.Draw, error) {
	q := `SELECT ` + drawColumns + ` FROM draws WHERE invite_code = ?`
	return scanDraw(db.conn.QueryRow(q, code))
}

// CodeExists reports whether any draw already holds the given invite code.
func (db *DB) CodeExists(code string) (bool, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM draws WHERE invite_code = ?`, code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListDrawsByCreator returns every draw a user has created, newest first.
func (db *DB) ListDrawsByCreator(creatorID string) ([]models.Draw, error) {
	q := `SELECT ` + drawColumns + ` FROM draws WHERE creator_id = ? ORDER BY created_at DESC`
	rows, err := db.conn.Query(q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		draws = append(draws, *d)
	}
	return draws, rows.Err()
}

// ListDue returns draws whose scheduled time has passed and which have not
// yet reached a terminal status. The scheduler feeds these to the executor.
func (db *DB) ListDue(now time.Time) ([]models.Draw, error) {
	q := `SELECT ` + drawColumns + ` FROM draws
	      WHERE draw_date IS NOT NULL AND draw_date <= ?
	        AND status IN ('active', 'in_progress')
	      ORDER BY draw_date`
	rows, err := db.conn.Query(q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var draws []models.Draw
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		draws = append(draws, *d)
	}
	return draws, rows.Err()
}

// UpdateDrawStatus moves a draw to a new lifecycle state.
func (db *DB) UpdateDrawStatus(id string, status models.DrawStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid draw status %q", status)
	}
	_, err := db.conn.Exec(`UPDATE draws SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	return err
}

// UpdateDrawSchedule sets or clears a draw's scheduled execution time.
func (db *DB) UpdateDrawSchedule(id string, drawDate *time.Time) error {
	_, err := db.conn.Exec(`UPDATE draws SET draw_date = ?, updated_at = ? WHERE id = ?`,
		nullTime(drawDate), time.Now().UTC(), id)
	return err
}

// --- Participant operations ---

const participantColumns = `id, draw_id, first_name, last_name, email, address, phone, created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(&p.ID, &p.DrawID, &p.FirstName, &p.LastName, &p.Email, &p.Address, &p.Phone, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// AddParticipant inserts a single participant into an existing draw.
func (db *DB) AddParticipant(p *models.Participant) error {
	const q = `INSERT INTO participants (id, draw_id, first_name, last_name, email, address, phone, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.Exec(q, p.ID, p.DrawID, p.FirstName, p.LastName, p.Email, p.Address, p.Phone, p.CreatedAt)
	return err
}

// GetParticipant returns a participant by ID, or nil.
func (db *DB) GetParticipant(id string) (*models.Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants WHERE id = ?`
	return scanParticipant(db.conn.QueryRow(q, id))
}

// GetParticipantByEmail returns the participant registered in a draw under
// the given email, or nil.
func (db *DB) GetParticipantByEmail(drawID, email string) (*models.Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants WHERE draw_id = ? AND email = ?`
	return scanParticipant(db.conn.QueryRow(q, drawID, email))
}

// ListParticipants returns every participant in a draw in join order.
func (db *DB) ListParticipants(drawID string) ([]models.Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants WHERE draw_id = ? ORDER BY created_at, id`
	rows, err := db.conn.Query(q, drawID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DrawID, &p.FirstName, &p.LastName, &p.Email, &p.Address, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// CountParticipants returns the number of participants in a draw.
func (db *DB) CountParticipants(drawID string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM participants WHERE draw_id = ?`, drawID).Scan(&n)
	return n, err
}

// DeleteParticipant removes a participant from a draw.
func (db *DB) DeleteParticipant(id string) error {
	_, err := db.conn.Exec(`DELETE FROM participants WHERE id = ?`, id)
	return err
}
