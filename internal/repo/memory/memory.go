// Package memory holds version state in process memory. It backs tests
// and one-shot runs that must not touch the data directory.
package memory

import (
	"context"
	"sync"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	versions  map[domain.SourceID]domain.VersionRecord
	lastCheck *domain.LastCheck
}

func New() *Store {
	return &Store{
		versions: make(map[domain.SourceID]domain.VersionRecord),
	}
}

func (m *Store) Get(ctx context.Context, id domain.SourceID) (*domain.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.versions[id]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (m *Store) Put(ctx context.Context, id domain.SourceID, rec *domain.VersionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[id] = *rec
	return nil
}

func (m *Store) GetLastCheck(ctx context.Context) (*domain.LastCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastCheck == nil {
		return nil, nil
	}
	out := *m.lastCheck
	return &out, nil
}

func (m *Store) PutLastCheck(ctx context.Context, lc *domain.LastCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lc
	m.lastCheck = &cp
	return nil
}
