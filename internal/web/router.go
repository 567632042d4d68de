// Package web assembles the chi router. Kept separate from main so the
// integration tests can mount the exact production routing.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/santasdraw/server/internal/auth"
	"github.com/santasdraw/server/internal/web/handlers"
)

// NewRouter wires every API route under /api/v1.
func NewRouter(h *handlers.Handler, authService *auth.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Public join flow.
		r.Get("/draws/join/{code}", h.DrawPublicInfo)
		r.Post("/draws/join/{code}", h.JoinDraw)

		// Manual draws work with or without an account.
		r.With(handlers.OptionalAuth(authService)).Post("/draws/manual", h.CreateManualDraw)

		// Organizer surface.
		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAuth(authService))
			r.Post("/draws/dynamic", h.CreateDynamicDraw)
			r.Get("/draws", h.ListMyDraws)
			r.Get("/draws/{id}", h.GetDrawDetail)
			r.Delete("/draws/{id}/participants/{participantID}", h.DeleteParticipant)
			r.Put("/draws/{id}/schedule", h.UpdateSchedule)
			r.Post("/draws/{id}/execute", h.ExecuteDraw)
			r.Get("/draws/{id}/results", h.GetResults)
		})
	})

	return r
}
