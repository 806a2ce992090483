package api

import (
	"time"

	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/tagger"
)

// SettingsDTO is the settings request/response body (aliased from the
// domain layer; the yaml/json tags there are the wire names).
type SettingsDTO = settings.Settings

// MoveRequest is the request body for relocating a note.
type MoveRequest struct {
	From string `json:"from" example:"inbox/note.md"`
	To   string `json:"to" example:"work/projects/note.md"`
}

// NoteListItem is a lightweight item in a list response. DerivedTags holds
// the tags the active policy derives for the note's current location.
type NoteListItem struct {
	Path        string    `json:"path" example:"work/projects/note.md"`
	Checksum    string    `json:"checksum" example:"abc123..."`
	DerivedTags []string  `json:"derived_tags" example:"projects"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NoteListResponse wraps vault listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total" example:"42"`
}

// Report is the bulk-operation result (aliased from the domain layer).
type Report = tagger.Report
