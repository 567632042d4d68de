package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/santasdraw/server/pkg/models"
)

// organizerDraw loads the draw from the URL and verifies the authenticated
// user created it. On failure it writes the response and returns nil.
func (h *Handler) organizerDraw(w http.ResponseWriter, r *http.Request) *models.Draw {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}

	id := chi.URLParam(r, "id")
	d, err := h.db.GetDraw(id)
	if err != nil {
		log.Printf("fetch draw %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "draw not found")
		return nil
	}
	if d.CreatorID != user.ID {
		respondError(w, http.StatusForbidden, "only the organizer may manage this draw")
		return nil
	}
	return d
}

type drawDetailResponse struct {
	Draw         *models.Draw         `json:"draw"`
	Participants []models.Participant `json:"participants"`
}

// ListMyDraws returns every draw the authenticated user has created.
func (h *Handler) ListMyDraws(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	draws, err := h.db.ListDrawsByCreator(user.ID)
	if err != nil {
		log.Printf("list draws for %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if draws == nil {
		draws = []models.Draw{}
	}
	respondJSON(w, http.StatusOK, draws)
}

// GetDrawDetail returns a draw with its participants, organizer only.
func (h *Handler) GetDrawDetail(w http.ResponseWriter, r *http.Request) {
	d := h.organizerDraw(w, r)
	if d == nil {
		return
	}

	participants, err := h.db.ListParticipants(d.ID)
	if err != nil {
		log.Printf("list participants for %s: %v", d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, drawDetailResponse{Draw: d, Participants: participants})
}

// DeleteParticipant removes a participant from a not-yet-completed draw.
// The organizer's own entry (the draw's first participant) cannot be
// removed.
func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	d := h.organizerDraw(w, r)
	if d == nil {
		return
	}
	if d.Status == models.StatusCompleted {
		respondError(w, http.StatusBadRequest, "cannot modify a completed draw")
		return
	}

	pid := chi.URLParam(r, "participantID")
	participants, err := h.db.ListParticipants(d.ID)
	if err != nil {
		log.Printf("list participants for %s: %v", d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var target *models.Participant
	for i := range participants {
		if participants[i].ID == pid {
			target = &participants[i]
			break
		}
	}
	if target == nil {
		respondError(w, http.StatusNotFound, "participant not found")
		return
	}
	if len(participants) > 0 && participants[0].ID == pid {
		respondError(w, http.StatusBadRequest, "the organizer cannot be removed from the draw")
		return
	}

	if err := h.db.DeleteParticipant(pid); err != nil {
		log.Printf("delete participant %s: %v", pid, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type updateScheduleRequest struct {
	DrawDate *time.Time `json:"drawDate"`
}

// UpdateSchedule sets or clears the scheduled execution time.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	d := h.organizerDraw(w, r)
	if d == nil {
		return
	}
	if d.Status == models.StatusCompleted {
		respondError(w, http.StatusBadRequest, "cannot modify a completed draw")
		return
	}

	var req updateScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DrawDate != nil {
		if err := validateDrawDate(*req.DrawDate, time.Now().UTC()); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.db.UpdateDrawSchedule(d.ID, req.DrawDate); err != nil {
		log.Printf("update schedule for %s: %v", d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type executeDrawResponse struct {
	Success      bool                 `json:"success"`
	MatchesCount int                  `json:"matchesCount"`
	Results      []models.MatchResult `json:"results"`
}

// ExecuteDraw runs the matching for a draw on the organizer's request.
func (h *Handler) ExecuteDraw(w http.ResponseWriter, r *http.Request) {
	d := h.organizerDraw(w, r)
	if d == nil {
		return
	}

	results, err := h.executor.ExecuteDraw(r.Context(), d.ID)
	if err != nil {
		respondDrawError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, executeDrawResponse{
		Success:      true,
		MatchesCount: len(results),
		Results:      results,
	})
}

// GetResults returns the stored match pairs of a completed draw.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	d := h.organizerDraw(w, r)
	if d == nil {
		return
	}
	if d.Status != models.StatusCompleted {
		respondError(w, http.StatusBadRequest, "draw has not been executed yet")
		return
	}

	results, err := h.db.ListMatchResults(d.ID)
	if err != nil {
		log.Printf("list results for %s: %v", d.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, results)
}
