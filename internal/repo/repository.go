package repo

import (
	"context"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

// Ports (interfaces). The file-backed store is the production adapter,
// the memory store backs tests.
type VersionStore interface {
	// Get returns nil, nil if no version has been recorded yet.
	Get(ctx context.Context, id domain.SourceID) (*domain.VersionRecord, error)
	Put(ctx context.Context, id domain.SourceID, rec *domain.VersionRecord) error
}

type LastCheckStore interface {
	// GetLastCheck returns nil, nil if no run has been recorded yet.
	GetLastCheck(ctx context.Context) (*domain.LastCheck, error)
	// PutLastCheck overwrites the shared record. Last writer wins.
	PutLastCheck(ctx context.Context, lc *domain.LastCheck) error
}
