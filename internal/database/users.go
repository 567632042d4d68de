package database

import (
	"database/sql"
	"time"

	"github.com/santasdraw/server/pkg/models"
)

const userColumns = `id, email, password_hash, created_at, last_login_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.LastLoginAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// CreateUser inserts a new user.
func (db *DB) CreateUser(user *models.User) error {
	const q = `INSERT INTO users (id, email, password_hash, created_at, last_login_at)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := db.conn.Exec(q, user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.LastLoginAt)
	return err
}

// GetUserByEmail returns a user by email, or nil if no such user exists.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(db.conn.QueryRow(q, email))
}

// GetUserByID returns a user by ID, or nil if no such user exists.
func (db *DB) GetUserByID(id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(db.conn.QueryRow(q, id))
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(id string) error {
	_, err := db.conn.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}
