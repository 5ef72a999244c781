package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/irep/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save keeps a deep copy of the snapshot.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	copied := *snap
	copied.Data = cloneData(snap.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Table] = &copied
	return nil
}

// Load returns a copy of the stored snapshot so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, table string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[table]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	ret := *snap
	ret.Data = cloneData(snap.Data)
	return &ret, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, table)
	return nil
}

// List returns the stored table names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]string, 0, len(s.data))
	for name := range s.data {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	return tables, nil
}

// cloneData copies the map and slice trees that value.ToGo produces.
func cloneData(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, sub := range x {
			out[k] = cloneData(sub)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, sub := range x {
			out[i] = cloneData(sub)
		}
		return out
	default:
		return v
	}
}
