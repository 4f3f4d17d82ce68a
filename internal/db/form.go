package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/cv-assistant/internal/types"
)

// FormStore exposes the two persisted keys of a KV as typed form state.
// Writes to the form data go through one mutex so concurrent field saves
// never overwrite each other.
type FormStore struct {
	kv KV
	mu sync.Mutex
}

// NewFormStore wraps kv
func NewFormStore(kv KV) *FormStore {
	return &FormStore{kv: kv}
}

// Fields returns the stored form fields; never-saved fields are empty.
func (f *FormStore) Fields(ctx context.Context) (types.FormFields, error) {
	var fields types.FormFields
	raw, err := f.kv.Get(ctx, KeyFormData)
	if err != nil {
		return fields, err
	}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fields, fmt.Errorf("failed to parse stored form data: %w", err)
	}
	return fields, nil
}

// SetFields replaces all five fields
func (f *FormStore) SetFields(ctx context.Context, fields types.FormFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(ctx, fields)
}

// Update reads the stored fields, applies fn and writes the result back while
// holding the form lock. Nothing is written when fn fails.
func (f *FormStore) Update(ctx context.Context, fn func(*types.FormFields) error) (types.FormFields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields, err := f.Fields(ctx)
	if err != nil {
		return fields, err
	}
	if err := fn(&fields); err != nil {
		return fields, err
	}
	if err := f.write(ctx, fields); err != nil {
		return fields, err
	}
	return fields, nil
}

func (f *FormStore) write(ctx context.Context, fields types.FormFields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal form data: %w", err)
	}
	return f.kv.Set(ctx, KeyFormData, string(data))
}

// Field returns one field by name
func (f *FormStore) Field(ctx context.Context, name string) (string, error) {
	fields, err := f.Fields(ctx)
	if err != nil {
		return "", err
	}
	return fields.Get(name)
}

// SetField updates one field by name, keeping the others
func (f *FormStore) SetField(ctx context.Context, name, value string) error {
	_, err := f.Update(ctx, func(fields *types.FormFields) error {
		return fields.Set(name, value)
	})
	return err
}

// ClearFields removes the stored form data
func (f *FormStore) ClearFields(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kv.Delete(ctx, KeyFormData)
}

// Credential returns the stored API key, or ""
func (f *FormStore) Credential(ctx context.Context) (string, error) {
	return f.kv.Get(ctx, KeyCredential)
}

// SetCredential stores the API key after trimming; a blank key is rejected.
func (f *FormStore) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("please enter a valid API key")
	}
	return f.kv.Set(ctx, KeyCredential, key)
}

// ClearCredential removes the stored API key
func (f *FormStore) ClearCredential(ctx context.Context) error {
	return f.kv.Delete(ctx, KeyCredential)
}

// CredentialConfigured reports whether a non-empty API key is stored
func (f *FormStore) CredentialConfigured(ctx context.Context) (bool, error) {
	key, err := f.Credential(ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(key) != "", nil
}
