package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/santasdraw/server/pkg/models"
)

type participantInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type createDrawRequest struct {
	AddressRequired     bool               `json:"addressRequired"`
	PhoneNumberRequired bool               `json:"phoneNumberRequired"`
	DrawDate            *time.Time         `json:"drawDate,omitempty"`
	Participants        []participantInput `json:"participants"`
}

type createDrawResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	DrawID     string `json:"drawId"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// validateParticipant checks one participant entry against the draw's
// requirement flags. Whitespace-only values count as missing.
func validateParticipant(p participantInput, requireAddress, requirePhone bool) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("participant name is required")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return fmt.Errorf("invalid email address %q", p.Email)
	}
	if requireAddress && strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("address is required for %s", p.Email)
	}
	if requirePhone && strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("phone is required for %s", p.Email)
	}
	return nil
}

// validateDrawDate enforces the scheduling rules: the time must be in the
// future, fall on an exact hour, and stay within the current year.
func validateDrawDate(t time.Time, now time.Time) error {
	if !t.After(now) {
		return fmt.Errorf("draw date must be in the future")
	}
	if t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return fmt.Errorf("draw date must be at an exact hour")
	}
	if t.UTC().Year() != now.UTC().Year() {
		return fmt.Errorf("draw date must be within the current year")
	}
	return nil
}

func buildParticipants(drawID string, inputs []participantInput, now time.Time) []models.Participant {
	out := make([]models.Participant, len(inputs))
	for i, in := range inputs {
		out[i] = models.Participant{
			ID:        uuid.New().String(),
			DrawID:    drawID,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Email:     strings.TrimSpace(strings.ToLower(in.Email)),
			Address:   strings.TrimSpace(in.Address),
			Phone:     strings.TrimSpace(in.Phone),
			// Join order drives giver ordering later, so keep the
			// timestamps strictly increasing.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return out
}

// CreateManualDraw creates a draw with a fixed participant list and runs
// the matching straight away. Authentication is optional; anonymous manual
// draws have no organizer.
func (h *Handler) CreateManualDraw(w http.ResponseWriter, r *http.Request) {
	var req createDrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Participants) < 3 {
		respondError(w, http.StatusBadRequest, "at least 3 participants are required")
		return
	}
	seen := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		if err := validateParticipant(p, req.AddressRequired, req.PhoneNumberRequired); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		email := strings.ToLower(strings.TrimSpace(p.Email))
		if seen[email] {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("duplicate participant email %q", email))
			return
		}
		seen[email] = true
	}

	now := time.Now().UTC()
	d := &models.Draw{
		ID:             uuid.New().String(),
		Status:         models.StatusInProgress,
		DrawType:       models.TypeManual,
		RequireAddress: req.AddressRequired,
		RequirePhone:   req.PhoneNumberRequired,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if user, ok := GetUserFromContext(r.Context()); ok {
		d.CreatorID = user.ID
	}

	if err := h.db.CreateDraw(d, buildParticipants(d.ID, req.Participants, now)); err != nil {
		log.Printf("create manual draw: %v", err)
		respondError(w, http.StatusInternalServerError, "error while creating draw")
		return
	}

	// Manual draws have their full participant list up front, so the
	// matching runs immediately rather than waiting for a trigger.
	if _, err := h.executor.ExecuteDraw(r.Context(), d.ID); err != nil {
		respondDrawError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createDrawResponse{
		Success: true,
		Message: "Draw created and processed successfully.",
		DrawID:  d.ID,
	})
}

// CreateDynamicDraw creates an invite-code draw owned by the authenticated
// organizer. The organizer is its first participant; others join through
// the invite code until the draw is executed.
func (h *Handler) CreateDynamicDraw(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createDrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Participants) < 1 {
		respondError(w, http.StatusBadRequest, "the organizer must be included as a participant")
		return
	}
	for _, p := range req.Participants {
		if err := validateParticipant(p, req.AddressRequired, req.PhoneNumberRequired); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	now := time.Now().UTC()
	if req.DrawDate != nil {
		if err := validateDrawDate(*req.DrawDate, now); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	code, err := h.invites.Generate()
	if err != nil {
		log.Printf("generate invite code: %v", err)
		respondError(w, http.StatusInternalServerError, "error while creating draw")
		return
	}

	d := &models.Draw{
		ID:             uuid.New().String(),
		CreatorID:      user.ID,
		Status:         models.StatusActive,
		DrawType:       models.TypeDynamic,
		DrawDate:       req.DrawDate,
		RequireAddress: req.AddressRequired,
		RequirePhone:   req.PhoneNumberRequired,
		InviteCode:     code,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.db.CreateDraw(d, buildParticipants(d.ID, req.Participants, now)); err != nil {
		log.Printf("create dynamic draw: %v", err)
		respondError(w, http.StatusInternalServerError, "error while creating draw")
		return
	}

	log.Printf("dynamic draw created: id=%s creator=%s code=%s", d.ID, user.ID, code)

	respondJSON(w, http.StatusCreated, createDrawResponse{
		Success:    true,
		Message:    "Draw created successfully.",
		DrawID:     d.ID,
		InviteCode: code,
	})
}

type publicDrawInfo struct {
	ID               string            `json:"id"`
	RequireAddress   bool              `json:"requireAddress"`
	RequirePhone     bool              `json:"requirePhone"`
	Status           models.DrawStatus `json:"status"`
	ParticipantCount int               `json:"participantCount"`
}

// DrawPublicInfo returns what a prospective joiner may see about a draw.
func (h *Handler) DrawPublicInfo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	d, err := h.db.GetDrawByInviteCode(code)
	if err != nil {
		log.Printf("lookup invite code %s: %v", code, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "draw not found")
		return
	}

	count, err := h.db.CountParticipants(d.ID)
	if err != nil {
		log.Printf("count participants for %s: %v", d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, publicDrawInfo{
		ID:               d.ID,
		RequireAddress:   d.RequireAddress,
		RequirePhone:     d.RequirePhone,
		Status:           d.Status,
		ParticipantCount: count,
	})
}

type joinDrawResponse struct {
	Success       bool   `json:"success"`
	DrawID        string `json:"drawId"`
	ParticipantID string `json:"participantId"`
}

// JoinDraw adds a participant to an active dynamic draw via invite code.
func (h *Handler) JoinDraw(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	d, err := h.db.GetDrawByInviteCode(code)
	if err != nil {
		log.Printf("lookup invite code %s: %v", code, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "draw not found")
		return
	}
	if d.Status != models.StatusActive {
		respondError(w, http.StatusConflict, "draw is no longer accepting participants")
		return
	}

	var req participantInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateParticipant(req, d.RequireAddress, d.RequirePhone); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	existing, err := h.db.GetParticipantByEmail(d.ID, email)
	if err != nil {
		log.Printf("lookup participant %s in %s: %v", email, d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "email already registered in this draw")
		return
	}

	p := &models.Participant{
		ID:        uuid.New().String(),
		DrawID:    d.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.db.AddParticipant(p); err != nil {
		// The UNIQUE(draw_id, email) constraint backs up the lookup
		// above against concurrent joins.
		respondError(w, http.StatusConflict, "email already registered in this draw")
		return
	}

	respondJSON(w, http.StatusCreated, joinDrawResponse{
		Success:       true,
		DrawID:        d.ID,
		ParticipantID: p.ID,
	})
}
