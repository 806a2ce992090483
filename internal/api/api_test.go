package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
	"github.com/starford/othala/internal/testutil"
)

type testAPI struct {
	router http.Handler
	store  storage.Provider
	st     *settings.Store
}

func newTestAPI(t *testing.T, authEnabled bool, token string) *testAPI {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	st := testutil.TestSettings(t, settings.Default())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tg := tagger.New(store, db, st, logger, nil)
	return &testAPI{
		router: NewRouter(store, tg, st, authEnabled, token, nil),
		store:  store,
		st:     st,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestGetSettings(t *testing.T) {
	a := newTestAPI(t, false, "")
	rec := a.do(t, http.MethodGet, "/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got settings.Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != settings.Default() {
		t.Errorf("settings = %+v, want defaults", got)
	}
}

func TestPutSettings(t *testing.T) {
	a := newTestAPI(t, false, "")
	rec := a.do(t, http.MethodPut, "/settings", map[string]string{
		"folder_depth": "joined-pair",
		"tag_prefix":   "#",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	cur := a.st.Current()
	if string(cur.FolderDepth) != "joined-pair" || cur.TagPrefix != "#" {
		t.Errorf("active settings = %+v", cur)
	}
}

func TestPutSettings_InvalidDepth(t *testing.T) {
	a := newTestAPI(t, false, "")
	rec := a.do(t, http.MethodPut, "/settings", map[string]string{"folder_depth": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if a.st.Current() != settings.Default() {
		t.Errorf("rejected update changed the active record: %+v", a.st.Current())
	}
}

func TestPutSettings_InvalidJSON(t *testing.T) {
	a := newTestAPI(t, false, "")
	req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRetag(t *testing.T) {
	a := newTestAPI(t, false, "")
	if err := a.store.Write("work/note.md", []byte("Body.\n")); err != nil {
		t.Fatal(err)
	}

	rec := a.do(t, http.MethodPost, "/retag", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rep Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Changed != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestListNotes(t *testing.T) {
	a := newTestAPI(t, false, "")
	if err := a.store.Write("work/note.md", []byte("Body.\n")); err != nil {
		t.Fatal(err)
	}
	if err := a.store.Write("root.md", []byte("Body.\n")); err != nil {
		t.Fatal(err)
	}

	rec := a.do(t, http.MethodGet, "/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp NoteListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	for _, n := range resp.Notes {
		if n.DerivedTags == nil {
			t.Errorf("%s: derived_tags must never be null", n.Path)
		}
		if n.Path == "work/note.md" && (len(n.DerivedTags) != 1 || n.DerivedTags[0] != "work") {
			t.Errorf("%s: derived_tags = %v", n.Path, n.DerivedTags)
		}
	}
}

func TestMoveNote(t *testing.T) {
	a := newTestAPI(t, false, "")
	if err := a.store.Write("work/note.md", []byte("Body.\n")); err != nil {
		t.Fatal(err)
	}

	rec := a.do(t, http.MethodPost, "/notes/move", MoveRequest{From: "work/note.md", To: "personal/note.md"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !a.store.Exists("personal/note.md") {
		t.Error("note not moved")
	}
}

func TestMoveNote_Errors(t *testing.T) {
	a := newTestAPI(t, false, "")
	if err := a.store.Write("a/x.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := a.store.Write("b/y.md", []byte("y")); err != nil {
		t.Fatal(err)
	}

	if rec := a.do(t, http.MethodPost, "/notes/move", MoveRequest{From: "missing.md", To: "a/z.md"}); rec.Code != http.StatusNotFound {
		t.Errorf("missing source: status = %d, want 404", rec.Code)
	}
	if rec := a.do(t, http.MethodPost, "/notes/move", MoveRequest{From: "a/x.md", To: "b/y.md"}); rec.Code != http.StatusConflict {
		t.Errorf("existing target: status = %d, want 409", rec.Code)
	}
	if rec := a.do(t, http.MethodPost, "/notes/move", MoveRequest{From: "", To: "a/z.md"}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty from: status = %d, want 400", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	a := newTestAPI(t, true, "secret")

	rec := a.do(t, http.MethodGet, "/settings", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good token: status = %d, want 200", rec.Code)
	}
}
