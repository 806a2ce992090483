package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type checkedRecord struct {
	Name string `yaml:"name"`
}

func (r *checkedRecord) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "from-env")
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("name: ${CFG_TEST_NAME}\nport: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got record
	if err := Load(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "from-env" || got.Port != 9000 {
		t.Errorf("record = %+v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var got record
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &got); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("name: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got checkedRecord
	if err := Load(path, &got); err == nil {
		t.Error("expected validation error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cfg.yaml")
	in := record{Name: "othala", Port: 8080}
	if err := Save(path, &in); err != nil {
		t.Fatal(err)
	}

	var out record
	if err := Load(path, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestSave_ValidatesBeforeWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	bad := checkedRecord{}
	if err := Save(path, &bad); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("invalid record must not be written")
	}
}

func TestLoadWithDefaults_FallsBack(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yaml")
	if err := os.WriteFile(def, []byte("name: fallback\nport: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got record
	if err := LoadWithDefaults(filepath.Join(dir, "missing.yaml"), def, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "fallback" {
		t.Errorf("record = %+v", got)
	}
}
