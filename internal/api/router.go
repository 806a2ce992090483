package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store storage.Provider, tg *tagger.Tagger, st *settings.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, tg, st)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tagging settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	// Bulk operations.
	r.Post("/retag", h.Retag)
	r.Post("/strip", h.Strip)

	// Vault listing and explicit moves.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes/move", h.MoveNote)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
