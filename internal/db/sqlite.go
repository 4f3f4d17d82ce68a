package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-assistant/internal/types"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout is fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore is the default local store, one file per user.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the SQLite file at path and applies migrations.
// The path ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// One connection: a single user, and ":memory:" is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite store: %w", err)
	}

	if err := RunMigrations(ctx, sqlDB, "sqlite3"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return NewSQLiteStore(sqlDB), nil
}

// NewSQLiteStore wraps an already migrated database handle.
func NewSQLiteStore(sqlDB *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: sqlDB, now: time.Now}
}

// Close closes the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or "" if it was never set
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SaveGeneration stores a successful generation, assigning an ID if needed
func (s *SQLiteStore) SaveGeneration(ctx context.Context, rec *types.GenerationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, mode, company_name, position_title, model, prompt_tokens, text, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), string(rec.Mode), rec.CompanyName, rec.PositionTitle, rec.Model, rec.PromptTokens, rec.Text,
		rec.GeneratedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// ListGenerations returns the most recent generations first
func (s *SQLiteStore) ListGenerations(ctx context.Context, limit int) ([]types.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, company_name, position_title, model, prompt_tokens, text, generated_at
		 FROM generations ORDER BY generated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []types.GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}
	return records, nil
}

// GetGeneration retrieves a generation by ID
func (s *SQLiteStore) GetGeneration(ctx context.Context, id uuid.UUID) (*types.GenerationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, company_name, position_title, model, prompt_tokens, text, generated_at
		 FROM generations WHERE id = ?`,
		id.String(),
	)
	rec, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*types.GenerationRecord, error) {
	var rec types.GenerationRecord
	var id, mode, generatedAt string
	if err := row.Scan(&id, &mode, &rec.CompanyName, &rec.PositionTitle, &rec.Model, &rec.PromptTokens, &rec.Text, &generatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan generation: %w", err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid generation id %q: %w", id, err)
	}
	at, err := time.Parse(timeLayout, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid generation timestamp %q: %w", generatedAt, err)
	}

	rec.ID = parsedID
	rec.Mode = types.Mode(mode)
	rec.GeneratedAt = at
	return &rec, nil
}
