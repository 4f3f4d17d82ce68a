// Package db provides the persistent form store and generation history,
// backed by SQLite locally or PostgreSQL when a DATABASE_URL is configured.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/cv-assistant/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and applies migrations
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migratePool(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Get returns the value stored under key, or "" if it was never set
func (db *DB) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM kv WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO kv (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SaveGeneration stores a successful generation, assigning an ID if needed
func (db *DB) SaveGeneration(ctx context.Context, rec *types.GenerationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generations (id, mode, company_name, position_title, model, prompt_tokens, text, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, string(rec.Mode), rec.CompanyName, rec.PositionTitle, rec.Model, rec.PromptTokens, rec.Text, rec.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// ListGenerations returns the most recent generations first
func (db *DB) ListGenerations(ctx context.Context, limit int) ([]types.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, mode, company_name, position_title, model, prompt_tokens, text, generated_at
		 FROM generations ORDER BY generated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var records []types.GenerationRecord
	for rows.Next() {
		var rec types.GenerationRecord
		var mode string
		var generatedAt time.Time
		if err := rows.Scan(&rec.ID, &mode, &rec.CompanyName, &rec.PositionTitle, &rec.Model, &rec.PromptTokens, &rec.Text, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.Mode = types.Mode(mode)
		rec.GeneratedAt = generatedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}
	return records, nil
}

// GetGeneration retrieves a generation by ID
func (db *DB) GetGeneration(ctx context.Context, id uuid.UUID) (*types.GenerationRecord, error) {
	var rec types.GenerationRecord
	var mode string
	err := db.pool.QueryRow(ctx,
		`SELECT id, mode, company_name, position_title, model, prompt_tokens, text, generated_at
		 FROM generations WHERE id = $1`,
		id,
	).Scan(&rec.ID, &mode, &rec.CompanyName, &rec.PositionTitle, &rec.Model, &rec.PromptTokens, &rec.Text, &rec.GeneratedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	rec.Mode = types.Mode(mode)
	rec.GeneratedAt = rec.GeneratedAt.UTC()
	return &rec, nil
}
