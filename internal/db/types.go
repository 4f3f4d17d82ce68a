package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/cv-assistant/internal/types"
)

// Store keys.
const (
	KeyFormData   = "formData"
	KeyCredential = "geminiApiKey"
)

// KV is a persistent string key-value store.
// Get returns "" and no error for a key that was never set.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// History records successful generations.
// GetGeneration returns nil and no error when the id is unknown.
type History interface {
	SaveGeneration(ctx context.Context, rec *types.GenerationRecord) error
	ListGenerations(ctx context.Context, limit int) ([]types.GenerationRecord, error)
	GetGeneration(ctx context.Context, id uuid.UUID) (*types.GenerationRecord, error)
}

// Store is a KV plus History backed by one database.
type Store interface {
	KV
	History
	Close() error
}

// DefaultHistoryLimit caps ListGenerations when the caller passes limit <= 0.
const DefaultHistoryLimit = 20
