package db

import (
	"context"
	"log"
	"os"
	"path/filepath"
)

// Options selects which backend Open returns.
type Options struct {
	// DatabaseURL selects PostgreSQL when set
	DatabaseURL string
	// Path is the SQLite file; ":memory:" is allowed
	Path string
	// Ephemeral keeps everything in process memory
	Ephemeral bool
}

// DefaultPath returns ~/.cv_assistant/store.db, falling back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".cv_assistant", "store.db")
	}
	return filepath.Join(home, ".cv_assistant", "store.db")
}

// Open returns the configured Store: memory, PostgreSQL, or SQLite in that order of precedence.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch {
	case opts.Ephemeral:
		log.Printf("[store] using in-memory store")
		return NewMemoryStore(), nil
	case opts.DatabaseURL != "":
		log.Printf("[store] using PostgreSQL store")
		return Connect(ctx, opts.DatabaseURL)
	default:
		path := opts.Path
		if path == "" {
			path = DefaultPath()
		}
		log.Printf("[store] using SQLite store at %s", path)
		return OpenSQLite(ctx, path)
	}
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
