package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/othala/internal/checksum"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewFS_RootMustExist(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestFS_WriteReadRoundtrip(t *testing.T) {
	f := newTestFS(t)
	content := []byte("---\ntags:\n  - work\n---\nBody.\n")
	if err := f.Write("work/note.md", content); err != nil {
		t.Fatal(err)
	}
	got, err := f.Read("work/note.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestFS_WriteLeavesNoTempFiles(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("a/note.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Join(f.root, "a"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".othala-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFS_ListReturnsMarkdownWithChecksums(t *testing.T) {
	f := newTestFS(t)
	body := []byte("note body\n")
	if err := f.Write("work/a.md", body); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("personal/b.md", []byte("other\n")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("work/skip.txt", []byte("not markdown")); err != nil {
		t.Fatal(err)
	}

	metas, err := f.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 {
		t.Fatalf("got %d notes, want 2", len(metas))
	}
	byPath := map[string]string{}
	for _, m := range metas {
		byPath[m.Path] = m.Checksum
	}
	if byPath["work/a.md"] != checksum.Sum(body) {
		t.Errorf("checksum mismatch for work/a.md")
	}
	if _, ok := byPath["personal/b.md"]; !ok {
		t.Error("personal/b.md missing from listing")
	}
}

func TestFS_MoveAndExists(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("work/note.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Move("work/note.md", "personal/deep/note.md"); err != nil {
		t.Fatal(err)
	}
	if f.Exists("work/note.md") {
		t.Error("old path still exists")
	}
	if !f.Exists("personal/deep/note.md") {
		t.Error("new path missing")
	}
}

func TestFS_Delete(t *testing.T) {
	f := newTestFS(t)
	if err := f.Write("note.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete("note.md"); err != nil {
		t.Fatal(err)
	}
	if f.Exists("note.md") {
		t.Error("note still exists after delete")
	}
	if err := f.Delete("note.md"); err == nil {
		t.Error("deleting a missing note should fail")
	}
}

func TestFS_RejectsEscapingPaths(t *testing.T) {
	f := newTestFS(t)
	for _, p := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd"} {
		if _, err := f.Read(p); err == nil {
			t.Errorf("Read(%q) should be rejected", p)
		}
		if err := f.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should be rejected", p)
		}
	}
}
