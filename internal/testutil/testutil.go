// Package testutil provides shared test helpers for setting up vaults,
// databases, and tagging settings.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "othala-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestSettings creates a settings store backed by a temp file, seeded with s.
func TestSettings(t *testing.T, s settings.Settings) *settings.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagging.yaml")
	st, err := settings.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Update(s); err != nil {
		t.Fatal(err)
	}
	return st
}
