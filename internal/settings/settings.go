// Package settings persists the tagging policy and hands out immutable
// snapshots of it to every tagging operation.
package settings

import (
	"errors"
	"fmt"
	"os"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/othala/internal/derive"
	pkgconfig "github.com/starford/othala/pkg/config"
)

// Settings is the persisted tagging record.
type Settings struct {
	FolderDepth derive.Depth `yaml:"folder_depth" json:"folder_depth"`
	TagPrefix   string       `yaml:"tag_prefix" json:"tag_prefix"`
	TagSuffix   string       `yaml:"tag_suffix" json:"tag_suffix"`
}

// Validate validates the tagging settings.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FolderDepth, validation.Required,
			validation.In(derive.DepthSingle, derive.DepthSplitPair, derive.DepthJoinedPair, derive.DepthFull)),
	)
}

// Policy returns the derivation policy this record describes.
func (s Settings) Policy() derive.Policy {
	return derive.Policy{
		Depth:  s.FolderDepth,
		Prefix: s.TagPrefix,
		Suffix: s.TagSuffix,
	}
}

// Default returns the default tagging settings.
func Default() Settings {
	return Settings{FolderDepth: derive.DepthSingle}
}

// Store owns the settings file. Reads return value snapshots, so a policy
// handed to an in-flight operation never changes under it.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

// Open loads the settings file at path, falling back to defaults when the
// file does not exist yet.
func Open(path string) (*Store, error) {
	st := &Store{path: path, cur: Default()}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	cur := Default()
	if err := pkgconfig.Load(path, &cur); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	st.cur = cur
	return st, nil
}

// Current returns a snapshot of the settings record.
func (st *Store) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur
}

// Policy returns the active derivation policy.
func (st *Store) Policy() derive.Policy {
	return st.Current().Policy()
}

// Update validates s, persists it, and makes it the active record.
func (st *Store) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := pkgconfig.Save(st.path, &s); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	st.cur = s
	return nil
}
