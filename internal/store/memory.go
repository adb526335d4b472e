package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the persisted document in memory. Used by unit tests and
// as an injectable stand-in for the file store; persist failures can be
// simulated with FailPersistWith.
type MemoryStore struct {
	mu         sync.Mutex
	doc        *Document
	persistErr error
	persists   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		m.doc = NewDocument()
	}
	return m.doc.Clone(), nil
}

func (m *MemoryStore) Persist(ctx context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistErr != nil {
		return m.persistErr
	}
	m.doc = doc.Clone()
	m.persists++
	return nil
}

// FailPersistWith makes every subsequent Persist return err; nil restores
// normal behavior.
func (m *MemoryStore) FailPersistWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistErr = err
}

// Snapshot returns a copy of the last persisted document (nil if nothing was
// ever persisted or loaded).
func (m *MemoryStore) Snapshot() *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil
	}
	return m.doc.Clone()
}

// Persists reports how many successful persists happened.
func (m *MemoryStore) Persists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persists
}
