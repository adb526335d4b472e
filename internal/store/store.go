package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable indicates the durable medium cannot be read or
// written at all (as opposed to being merely empty).
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the durable backend for the single persisted Document. Persist
// writes the entire document as one atomic operation: a crash mid-write must
// never leave a partial mix of old and new state observable.
type Store interface {
	// Load reads the persisted document. When no document exists yet it
	// returns the canonical default and persists it immediately so
	// subsequent loads are consistent.
	Load(ctx context.Context) (*Document, error)
	// Persist atomically replaces the persisted document.
	Persist(ctx context.Context, doc *Document) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorageUnavailable)
}
