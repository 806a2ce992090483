package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/mcpserver"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
)

// toolkit bundles the pieces the one-shot commands share. close must be
// called when done.
type toolkit struct {
	store storage.Provider
	db    *index.DB
	st    *settings.Store
	tg    *tagger.Tagger
	close func()
}

func newToolkit(cfg *Config) (*toolkit, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	st, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings: %w", err)
	}
	tg := tagger.New(store, db, st, logger, nil)
	return &toolkit{store: store, db: db, st: st, tg: tg, close: func() { db.Close() }}, nil
}

// Retag runs one bulk tag re-application pass and prints the outcome.
func Retag(cfg *Config) error {
	tk, err := newToolkit(cfg)
	if err != nil {
		return err
	}
	defer tk.close()

	rep, err := tk.tg.RetagAll()
	if err != nil {
		return fmt.Errorf("retag: %w", err)
	}
	fmt.Printf("retag: %d changed, %d skipped, %d failed\n", rep.Changed, rep.Skipped, rep.Failed)
	for _, it := range rep.Items {
		if it.Status == tagger.StatusFailed {
			fmt.Printf("  failed: %s: %s\n", it.Path, it.Error)
		}
	}
	return nil
}

// Strip runs one bulk folder-tag removal pass and prints the outcome.
func Strip(cfg *Config) error {
	tk, err := newToolkit(cfg)
	if err != nil {
		return err
	}
	defer tk.close()

	rep, err := tk.tg.StripAll()
	if err != nil {
		return fmt.Errorf("strip: %w", err)
	}
	fmt.Printf("strip: %d changed, %d skipped, %d failed\n", rep.Changed, rep.Skipped, rep.Failed)
	for _, it := range rep.Items {
		if it.Status == tagger.StatusFailed {
			fmt.Printf("  failed: %s: %s\n", it.Path, it.Error)
		}
	}
	return nil
}

// ServeMCP runs the stdio MCP server until the client disconnects.
func ServeMCP(cfg *Config) error {
	tk, err := newToolkit(cfg)
	if err != nil {
		return err
	}
	defer tk.close()

	return mcpserver.New(tk.store, tk.tg, tk.st).ServeStdio()
}
