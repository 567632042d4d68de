package models

import (
	"fmt"
	"time"
)

// DrawStatus is the lifecycle state of a draw.
type DrawStatus string

const (
	StatusActive     DrawStatus = "active"
	StatusInProgress DrawStatus = "in_progress"
	StatusCompleted  DrawStatus = "completed"
	StatusCancelled  DrawStatus = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s DrawStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseDrawStatus converts a stored string into a DrawStatus, rejecting
// anything outside the closed set. Used at the persistence boundary so a
// bad row fails loudly on read instead of surfacing later.
func ParseDrawStatus(s string) (DrawStatus, error) {
	status := DrawStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown draw status %q", s)
	}
	return status, nil
}

// DrawType classifies how a draw was created.
type DrawType string

const (
	TypeAnonymous   DrawType = "anonymous"
	TypeUserCreated DrawType = "user_created"
	TypeManual      DrawType = "manual"
	TypeDynamic     DrawType = "dynamic"
)

// Valid reports whether t is one of the known draw types.
func (t DrawType) Valid() bool {
	switch t {
	case TypeAnonymous, TypeUserCreated, TypeManual, TypeDynamic:
		return true
	}
	return false
}

// ParseDrawType converts a stored string into a DrawType.
func ParseDrawType(s string) (DrawType, error) {
	typ := DrawType(s)
	if !typ.Valid() {
		return "", fmt.Errorf("unknown draw type %q", s)
	}
	return typ, nil
}

// Draw is one gift-exchange event.
type Draw struct {
	ID             string     `json:"id"`
	CreatorID      string     `json:"creator_id,omitempty"`
	Status         DrawStatus `json:"status"`
	DrawType       DrawType   `json:"draw_type"`
	DrawDate       *time.Time `json:"draw_date,omitempty"`
	RequireAddress bool       `json:"require_address"`
	RequirePhone   bool       `json:"require_phone"`
	InviteCode     string     `json:"invite_code,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Participant is one person entered into a draw. Rows are immutable once
// the draw has been matched.
type Participant struct {
	ID        string    `json:"id"`
	DrawID    string    `json:"draw_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the participant's display name.
func (p Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MatchResult is one giver→receiver assignment belonging to a draw.
// For a given draw each participant appears exactly once as giver and
// exactly once as receiver, and never gives to themselves.
type MatchResult struct {
	DrawID     string    `json:"draw_id"`
	GiverID    string    `json:"giver_id"`
	ReceiverID string    `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}
