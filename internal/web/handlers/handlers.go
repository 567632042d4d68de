// Package handlers implements the JSON API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/santasdraw/server/config"
	"github.com/santasdraw/server/internal/auth"
	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/draw"
	"github.com/santasdraw/server/internal/invite"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	db       *database.DB
	cfg      *config.Config
	auth     *auth.Service
	executor *draw.Service
	invites  *invite.Generator
}

// New creates a new handler.
func New(db *database.DB, cfg *config.Config, authService *auth.Service, executor *draw.Service, invites *invite.Generator) *Handler {
	return &Handler{
		db:       db,
		cfg:      cfg,
		auth:     authService,
		executor: executor,
		invites:  invites,
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondDrawError translates the draw error taxonomy into HTTP status
// codes. Every caller-facing execution failure funnels through here so the
// mapping lives in exactly one place.
func respondDrawError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draw.ErrDrawNotFound):
		respondError(w, http.StatusNotFound, "draw not found")
	case errors.Is(err, draw.ErrDrawCompleted):
		respondError(w, http.StatusConflict, "draw is already completed")
	case errors.Is(err, draw.ErrTooFewParticipants):
		respondError(w, http.StatusBadRequest, "minimum 3 participants required")
	case errors.Is(err, draw.ErrPersistence):
		respondError(w, http.StatusBadGateway, "failed to store draw results")
	default:
		log.Printf("draw execution error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
