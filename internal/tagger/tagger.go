// Package tagger applies and removes folder-derived tags on vault notes.
//
// Each operation is one read-transform-write on a single document with no
// carry-over state: the active policy is snapshotted once per call and the
// reconciliation itself is pure. Bulk passes are best-effort per document.
package tagger

import (
	"fmt"
	"log/slog"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/derive"
	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/reconcile"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
)

// Notify is called after a document's tag field changed on disk.
// kind is "tagged" or "stripped".
type Notify func(kind, path string)

// Tagger coordinates storage, the checksum index, and the tagging policy.
type Tagger struct {
	store    storage.Provider
	db       index.NoteIndex
	settings *settings.Store
	logger   *slog.Logger
	notify   Notify
}

// New creates a new Tagger. notify may be nil.
func New(store storage.Provider, db index.NoteIndex, st *settings.Store, logger *slog.Logger, notify Notify) *Tagger {
	return &Tagger{store: store, db: db, settings: st, logger: logger, notify: notify}
}

// Preview returns the tags the active policy derives for a note path.
func (t *Tagger) Preview(path string) []string {
	return derive.Tags(derive.Segments(path), t.settings.Policy())
}

// Apply reconciles the folder-derived tags of the note at path.
// oldPath selects the action: "" for a newly created note, the previous
// path for a relocated note, and path itself for a re-run (which normalises
// the current derived set after a policy change). Root-level notes with an
// empty derived set are silently skipped.
func (t *Tagger) Apply(path, oldPath string) error {
	_, err := t.apply(path, oldPath)
	return err
}

func (t *Tagger) apply(path, oldPath string) (bool, error) {
	pol := t.settings.Policy()
	newTags := derive.Tags(derive.Segments(path), pol)
	var stale []string
	if oldPath != "" {
		stale = derive.Tags(derive.Segments(oldPath), pol)
	}
	if len(newTags) == 0 && len(stale) == 0 {
		return false, nil
	}

	data, err := t.store.Read(path)
	if err != nil {
		return false, fmt.Errorf("tagger: read %s: %w", path, err)
	}
	updated, changed := reconcile.Apply(data, newTags, stale)
	if changed {
		if err := t.store.Write(path, updated); err != nil {
			return false, fmt.Errorf("tagger: write %s: %w", path, err)
		}
		data = updated
	}
	t.record(path, data)
	if changed {
		t.logger.Debug("tagger: applied", slog.String("path", path), slog.String("old_path", oldPath))
		if t.notify != nil {
			t.notify("tagged", path)
		}
	}
	return changed, nil
}

// Remove strips the folder-derived tags of the note at path. A note whose
// only tag was the folder tag loses its tag field entirely.
func (t *Tagger) Remove(path string) error {
	_, err := t.strip(path)
	return err
}

func (t *Tagger) strip(path string) (bool, error) {
	remove := derive.Tags(derive.Segments(path), t.settings.Policy())
	if len(remove) == 0 {
		return false, nil
	}

	data, err := t.store.Read(path)
	if err != nil {
		return false, fmt.Errorf("tagger: read %s: %w", path, err)
	}
	updated, changed := reconcile.Strip(data, remove)
	if changed {
		if err := t.store.Write(path, updated); err != nil {
			return false, fmt.Errorf("tagger: write %s: %w", path, err)
		}
		data = updated
	}
	t.record(path, data)
	if changed {
		t.logger.Debug("tagger: stripped", slog.String("path", path))
		if t.notify != nil {
			t.notify("stripped", path)
		}
	}
	return changed, nil
}

// MoveNote relocates a note inside the vault and reconciles its tags as a
// move action: stale tags from the old path go, tags for the new path come.
func (t *Tagger) MoveNote(from, to string) error {
	if !t.store.Exists(from) {
		return fmt.Errorf("tagger: move %s: %w", from, apperr.ErrNotFound)
	}
	if t.store.Exists(to) {
		return fmt.Errorf("tagger: move to %s: %w", to, apperr.ErrAlreadyExists)
	}
	if err := t.store.Move(from, to); err != nil {
		return err
	}
	if err := t.db.Delete(from); err != nil {
		t.logger.Warn("tagger: index delete failed", slog.String("path", from), slog.String("error", err.Error()))
	}
	return t.Apply(to, from)
}

// RetagAll re-runs tag application over every note in the vault, continuing
// past per-document failures and reporting each outcome.
func (t *Tagger) RetagAll() (Report, error) {
	return t.bulk(func(path string) (bool, error) { return t.apply(path, path) }, StatusTagged)
}

// StripAll removes the currently derived folder tags from every note.
func (t *Tagger) StripAll() (Report, error) {
	return t.bulk(t.strip, StatusStripped)
}

func (t *Tagger) bulk(op func(path string) (bool, error), okStatus Status) (Report, error) {
	var rep Report
	metas, err := t.store.List("")
	if err != nil {
		return rep, err
	}
	for _, m := range metas {
		changed, err := op(m.Path)
		switch {
		case err != nil:
			t.logger.Warn("tagger: bulk item failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			rep.add(Item{Path: m.Path, Status: StatusFailed, Error: err.Error()})
		case !changed:
			rep.add(Item{Path: m.Path, Status: StatusSkipped})
		default:
			rep.add(Item{Path: m.Path, Status: okStatus})
		}
	}
	return rep, nil
}

// record refreshes the index row so watcher echo suppression and move
// detection see the note's current checksum.
func (t *Tagger) record(path string, data []byte) {
	if err := t.db.Upsert(path, checksum.Sum(data)); err != nil {
		t.logger.Warn("tagger: index upsert failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
