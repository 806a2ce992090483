// Package watcher turns raw file-system events into tagging actions.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
)

// EventCallback is called when a note disappears from the vault.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled.
//
// A relocated note arrives as a Rename on the old path and a bare Create on
// the new one, with nothing linking the two. The checksum index supplies the
// link: a Create whose checksum matches an indexed path that is no longer on
// disk is a move from that path, so the stale folder tags can be stripped.
// Plain Write events only refresh the index; editing a note never retriggers
// tagging.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events schedule a debounced reconciliation pass that catches
// moves whose Create event was missed and removes stale index entries.
func Watch(ctx context.Context, db *index.DB, store storage.Provider, tg *tagger.Tagger, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, tg, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Tag any .md files already inside (whole-folder moves
					// land here).
					tagNewDir(db, store, tg, vaultRoot, absPath, logger)
					continue
				}
			}

			// Only process .md files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				handleCreate(db, store, tg, rel, logger)

			case ev.Op&fsnotify.Write != 0:
				refreshChecksum(db, store, rel, logger)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.Delete(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create. The old index row must stay
				// so the Create can match its checksum, so only schedule a
				// reconciliation pass for cleanup.
				logger.Debug("watcher: rename observed", slog.String("path", rel))
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleCreate classifies a Create event as an echo of our own atomic write,
// a move, or a genuine new note, and applies tags accordingly.
func handleCreate(db *index.DB, store storage.Provider, tg *tagger.Tagger, rel string, logger *slog.Logger) {
	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	cs := checksum.Sum(data)

	// An index row for this path with the same checksum means the event is
	// an echo of a write the tagger itself just made.
	if prev, _ := db.Checksum(rel); prev == cs {
		return
	}

	oldPath := missingTwin(db, store, cs, rel)
	if oldPath != "" {
		logger.Debug("watcher: move detected", slog.String("from", oldPath), slog.String("to", rel))
		if err := tg.Apply(rel, oldPath); err != nil {
			logger.Warn("watcher: apply failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		if err := db.Delete(oldPath); err != nil {
			logger.Warn("watcher: stale row delete failed", slog.String("path", oldPath), slog.String("error", err.Error()))
		}
		return
	}

	if err := tg.Apply(rel, ""); err != nil {
		logger.Warn("watcher: apply failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
}

// refreshChecksum records a user edit without retriggering tagging.
func refreshChecksum(db *index.DB, store storage.Provider, rel string, logger *slog.Logger) {
	data, err := store.Read(rel)
	if err != nil {
		return
	}
	cs := checksum.Sum(data)
	if prev, _ := db.Checksum(rel); prev == cs {
		return
	}
	if err := db.Upsert(rel, cs); err != nil {
		logger.Warn("watcher: upsert failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
}

// missingTwin returns an indexed path recorded with the same checksum whose
// file is no longer on disk — the previous location of a moved note.
func missingTwin(db *index.DB, store storage.Provider, cs, rel string) string {
	candidates, err := db.PathsByChecksum(cs)
	if err != nil {
		return ""
	}
	for _, p := range candidates {
		if p != rel && !store.Exists(p) {
			return p
		}
	}
	return ""
}

// reconcileAfterRename does a lightweight pass using batch lookups: moved
// files whose Create event was missed are retagged against their old path,
// and index rows without a file on disk are removed.
func reconcileAfterRename(db *index.DB, store storage.Provider, tg *tagger.Tagger, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		if old := twinIn(checksums, disk, cs, p); old != "" {
			logger.Debug("reconcile: move detected", slog.String("from", old), slog.String("to", p))
			if err := tg.Apply(p, old); err != nil {
				logger.Warn("reconcile: apply failed", slog.String("path", p), slog.String("error", err.Error()))
			}
			delete(checksums, old)
			if err := db.Delete(old); err != nil {
				logger.Warn("reconcile: stale row delete failed", slog.String("path", old), slog.String("error", err.Error()))
			}
			continue
		}
		if _, indexed := checksums[p]; !indexed {
			if err := tg.Apply(p, ""); err != nil {
				logger.Warn("reconcile: apply failed", slog.String("path", p), slog.String("error", err.Error()))
			}
			continue
		}
		// Same path, new content: a plain edit.
		if err := db.Upsert(p, cs); err != nil {
			logger.Warn("reconcile: upsert failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := db.Delete(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				if cb != nil {
					cb("removed", p)
				}
			}
		}
	}
}

// twinIn is missingTwin over the batch snapshots.
func twinIn(checksums map[string]string, disk map[string]string, cs, rel string) string {
	for p, pcs := range checksums {
		if p == rel || pcs != cs {
			continue
		}
		if _, onDisk := disk[p]; !onDisk {
			return p
		}
	}
	return ""
}

// tagNewDir runs create/move handling over any .md files found in a newly
// created directory.
func tagNewDir(db *index.DB, store storage.Provider, tg *tagger.Tagger, vaultRoot, dirPath string, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		handleCreate(db, store, tg, filepath.ToSlash(rel), logger)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
