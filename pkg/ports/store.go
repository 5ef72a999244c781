package ports

import (
	"context"

	"github.com/aretw0/irep/pkg/domain"
)

// SnapshotStore persists snapshots of written tables.
type SnapshotStore interface {
	// Save stores the snapshot under its table name, replacing any previous one.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot of a table.
	// Returns domain.ErrSnapshotNotFound if none was saved.
	Load(ctx context.Context, table string) (*domain.Snapshot, error)

	// Delete removes the snapshot of a table.
	Delete(ctx context.Context, table string) error

	// List returns the names of all stored tables.
	List(ctx context.Context) ([]string, error)
}
