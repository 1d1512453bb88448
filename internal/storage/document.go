package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Document is a JSON value of type T kept under a fixed key.
type Document[T any] struct {
	store Store
	key   string
}

// NewDocument binds a Document to key in store.
func NewDocument[T any](store Store, key string) *Document[T] {
	return &Document[T]{store: store, key: key}
}

// Key returns the storage key of the document.
func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value, or the zero value when nothing is stored.
// A value that no longer decodes is discarded and logged; the caller sees
// the zero value and no error.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	var zero T

	raw, err := d.store.Get(ctx, d.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return zero, nil
		}
		return zero, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("Could not load %s from storage, resetting: %v", d.key, err)
		if delErr := d.store.Delete(ctx, d.key); delErr != nil {
			log.Printf("failed to reset %s: %v", d.key, delErr)
		}
		return zero, nil
	}
	return v, nil
}

// Save encodes v and stores it.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", d.key, err)
	}
	return d.store.Set(ctx, d.key, raw)
}

// Clear removes the stored value.
func (d *Document[T]) Clear(ctx context.Context) error {
	return d.store.Delete(ctx, d.key)
}
