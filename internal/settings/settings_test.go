package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/othala/internal/derive"
)

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "tagging.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Current(); got != Default() {
		t.Errorf("settings = %+v, want defaults", got)
	}
	if st.Policy().Depth != derive.DepthSingle {
		t.Errorf("default depth = %s, want %s", st.Policy().Depth, derive.DepthSingle)
	}
}

func TestStore_UpdatePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagging.yaml")
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Settings{FolderDepth: derive.DepthJoinedPair, TagPrefix: "#", TagSuffix: "!"}
	if err := st.Update(want); err != nil {
		t.Fatal(err)
	}
	if got := st.Current(); got != want {
		t.Errorf("current = %+v, want %+v", got, want)
	}

	// A fresh store reads the persisted record back.
	st2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := st2.Current(); got != want {
		t.Errorf("reloaded = %+v, want %+v", got, want)
	}
}

func TestStore_UpdateRejectsInvalidDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagging.yaml")
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Update(Settings{FolderDepth: "bogus"}); err == nil {
		t.Fatal("expected validation error")
	}
	if got := st.Current(); got != Default() {
		t.Errorf("rejected update must not change the active record, got %+v", got)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("rejected update must not write the file")
	}
}

func TestStore_UpdateRejectsEmptyDepth(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "tagging.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Update(Settings{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSettings_Policy(t *testing.T) {
	s := Settings{FolderDepth: derive.DepthSplitPair, TagPrefix: "p-", TagSuffix: "-s"}
	pol := s.Policy()
	if pol.Depth != derive.DepthSplitPair || pol.Prefix != "p-" || pol.Suffix != "-s" {
		t.Errorf("policy = %+v", pol)
	}
}
