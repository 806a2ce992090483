package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/reconcile"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
	"github.com/starford/othala/internal/testutil"
)

type fixture struct {
	vault  string
	store  storage.Provider
	db     *index.DB
	tg     *tagger.Tagger
	logger *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vault, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	st := testutil.TestSettings(t, settings.Default())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tg := tagger.New(store, db, st, logger, nil)
	return &fixture{vault: vault, store: store, db: db, tg: tg, logger: logger}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func (f *fixture) tags(t *testing.T, path string) []string {
	t.Helper()
	data, err := f.store.Read(path)
	if err != nil {
		return nil
	}
	return reconcile.Tags(data)
}

func TestHandleCreate_NewNote(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Write("work/note.md", []byte("Body.\n")); err != nil {
		t.Fatal(err)
	}

	handleCreate(f.db, f.store, f.tg, "work/note.md", f.logger)

	if got := f.tags(t, "work/note.md"); !reflect.DeepEqual(got, []string{"work"}) {
		t.Errorf("tags = %v, want [work]", got)
	}
}

func TestHandleCreate_EchoSuppressed(t *testing.T) {
	f := newFixture(t)
	content := []byte("---\ntags:\n  - work\n---\nBody.\n")
	if err := f.store.Write("work/note.md", content); err != nil {
		t.Fatal(err)
	}
	// The index row matching the on-disk checksum marks the event as an echo
	// of the tagger's own write.
	if err := f.db.Upsert("work/note.md", checksum.Sum(content)); err != nil {
		t.Fatal(err)
	}

	handleCreate(f.db, f.store, f.tg, "work/note.md", f.logger)

	got, _ := f.store.Read("work/note.md")
	if string(got) != string(content) {
		t.Errorf("echo altered the note: %q", got)
	}
}

func TestHandleCreate_DetectsMove(t *testing.T) {
	f := newFixture(t)
	content := []byte("---\ntags:\n  - work\n  - urgent\n---\nBody.\n")
	// The note was indexed at its old location, then relocated on disk.
	if err := f.db.Upsert("work/note.md", checksum.Sum(content)); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Write("personal/note.md", content); err != nil {
		t.Fatal(err)
	}

	handleCreate(f.db, f.store, f.tg, "personal/note.md", f.logger)

	got := f.tags(t, "personal/note.md")
	if !reflect.DeepEqual(got, []string{"urgent", "personal"}) {
		t.Errorf("tags = %v, want [urgent personal]", got)
	}
	if cs, _ := f.db.Checksum("work/note.md"); cs != "" {
		t.Error("stale index row survived the move")
	}
}

func TestRefreshChecksum_NeverTags(t *testing.T) {
	f := newFixture(t)
	body := []byte("edited body, no tag field\n")
	if err := f.store.Write("work/note.md", body); err != nil {
		t.Fatal(err)
	}

	refreshChecksum(f.db, f.store, "work/note.md", f.logger)

	got, _ := f.store.Read("work/note.md")
	if string(got) != string(body) {
		t.Errorf("edit handling altered the note: %q", got)
	}
	if cs, _ := f.db.Checksum("work/note.md"); cs != checksum.Sum(body) {
		t.Errorf("checksum not recorded: %q", cs)
	}
}

func TestReconcileAfterRename(t *testing.T) {
	f := newFixture(t)
	content := []byte("---\ntags:\n  - work\n---\nBody.\n")
	if err := f.db.Upsert("work/note.md", checksum.Sum(content)); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Write("personal/note.md", content); err != nil {
		t.Fatal(err)
	}
	if err := f.db.Upsert("gone.md", "stale"); err != nil {
		t.Fatal(err)
	}

	var removed []string
	reconcileAfterRename(f.db, f.store, f.tg, f.logger, func(kind, path string) {
		if kind == "removed" {
			removed = append(removed, path)
		}
	})

	got := f.tags(t, "personal/note.md")
	if !reflect.DeepEqual(got, []string{"personal"}) {
		t.Errorf("tags = %v, want [personal]", got)
	}
	if !reflect.DeepEqual(removed, []string{"gone.md"}) {
		t.Errorf("removed = %v, want [gone.md]", removed)
	}
}

func TestWatch_TagsNewNote(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, f.db, f.store, f.tg, f.vault, f.logger, nil)
	}()

	// Give the watcher a moment to install its watches.
	time.Sleep(100 * time.Millisecond)

	dir := filepath.Join(f.vault, "work")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("Body.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		return reflect.DeepEqual(f.tags(t, "work/note.md"), []string{"work"})
	}, "new note never got its folder tag")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
}

func TestWatch_MoveKeepsUserTags(t *testing.T) {
	f := newFixture(t)

	// Seed a tagged note and its index row before the watcher starts.
	content := []byte("---\ntags:\n  - work\n  - urgent\n---\nBody.\n")
	if err := f.store.Write("work/note.md", content); err != nil {
		t.Fatal(err)
	}
	if err := f.db.Upsert("work/note.md", checksum.Sum(content)); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(f.vault, "personal"), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, f.db, f.store, f.tg, f.vault, f.logger, nil)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.Rename(
		filepath.Join(f.vault, "work", "note.md"),
		filepath.Join(f.vault, "personal", "note.md"),
	); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		return reflect.DeepEqual(f.tags(t, "personal/note.md"), []string{"urgent", "personal"})
	}, "moved note tags never reconciled")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
}
