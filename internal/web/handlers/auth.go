package handlers

import (
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/santasdraw/server/internal/auth"
	"github.com/santasdraw/server/pkg/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// Register creates a new account and returns a bearer token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, tok, err := h.auth.Register(req.Email, req.Password)
	if err == auth.ErrEmailTaken {
		respondError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if err != nil {
		log.Printf("register failed for %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        user,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, tok, err := h.auth.Login(req.Email, req.Password)
	if err == auth.ErrInvalidCredentials {
		respondError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	if err != nil {
		log.Printf("login failed for %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        user,
	})
}
