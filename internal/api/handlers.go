package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
)

// Handler holds API route handlers.
type Handler struct {
	store    storage.Provider
	tg       *tagger.Tagger
	settings *settings.Store
}

// NewHandler creates a new Handler.
func NewHandler(store storage.Provider, tg *tagger.Tagger, st *settings.Store) *Handler {
	return &Handler{store: store, tg: tg, settings: st}
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Current())
}

// PutSettings handles PUT /settings: validates, persists, and activates the
// new tagging record. Retagging is left to an explicit POST /retag.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.settings.Update(req); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("settings update failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Current())
}

// Retag handles POST /retag: re-runs tag application over the whole vault
// and returns the per-document report.
func (h *Handler) Retag(w http.ResponseWriter, _ *http.Request) {
	rep, err := h.tg.RetagAll()
	if err != nil {
		slog.Error("retag failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Strip handles POST /strip: removes the derived folder tags from every note.
func (h *Handler) Strip(w http.ResponseWriter, _ *http.Request) {
	rep, err := h.tg.StripAll()
	if err != nil {
		slog.Error("strip failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	metas, err := h.store.List("")
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]NoteListItem, len(metas))
	for i, m := range metas {
		tags := h.tg.Preview(m.Path)
		if tags == nil {
			tags = []string{}
		}
		items[i] = NoteListItem{
			Path:        m.Path,
			Checksum:    m.Checksum,
			DerivedTags: tags,
			UpdatedAt:   m.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// MoveNote handles POST /notes/move: relocates a note and reconciles its
// tags as a move action.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	if err := h.tg.MoveNote(req.From, req.To); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("target already exists"))
		default:
			slog.Error("move failed", slog.String("from", req.From), slog.String("to", req.To), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": req.To})
}
