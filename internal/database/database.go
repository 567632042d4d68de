package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database and runs migrations.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer, many readers.
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they do not exist.
func migrate(conn *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		last_login_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS draws (
		id              TEXT PRIMARY KEY,
		creator_id      TEXT REFERENCES users(id) ON DELETE SET NULL,
		status          TEXT NOT NULL DEFAULT 'active',
		draw_type       TEXT NOT NULL DEFAULT 'anonymous',
		draw_date       DATETIME,
		require_address INTEGER NOT NULL DEFAULT 0,
		require_phone   INTEGER NOT NULL DEFAULT 0,
		invite_code     TEXT UNIQUE,
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_draws_creator_id ON draws(creator_id);
	CREATE INDEX IF NOT EXISTS idx_draws_status ON draws(status);
	CREATE INDEX IF NOT EXISTS idx_draws_invite_code ON draws(invite_code);
	CREATE INDEX IF NOT EXISTS idx_draws_draw_date ON draws(draw_date);

	CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		draw_id    TEXT NOT NULL REFERENCES draws(id) ON DELETE CASCADE,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL,
		address    TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE (draw_id, email)
	);

	CREATE INDEX IF NOT EXISTS idx_participants_draw_id ON participants(draw_id);

	CREATE TABLE IF NOT EXISTS match_results (
		draw_id     TEXT NOT NULL REFERENCES draws(id) ON DELETE CASCADE,
		giver_id    TEXT NOT NULL REFERENCES participants(id),
		receiver_id TEXT NOT NULL REFERENCES participants(id),
		created_at  DATETIME NOT NULL,
		UNIQUE (draw_id, giver_id),
		UNIQUE (draw_id, receiver_id),
		CHECK (giver_id <> receiver_id)
	);

	CREATE INDEX IF NOT EXISTS idx_match_results_draw_id ON match_results(draw_id);
	`
	_, err := conn.Exec(ddl)
	return err
}
