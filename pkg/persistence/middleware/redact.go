package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks, at any depth, the values of fields whose name
// matches one of the patterns before the snapshot reaches the store.
func NewRedactMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	// Work on a copy; the caller may still hold the data.
	masked := *snap
	masked.Data = m.mask(snap.Data)
	return m.next.Save(ctx, &masked)
}

func (m *redactMiddleware) Load(ctx context.Context, table string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, table)
}

func (m *redactMiddleware) Delete(ctx context.Context, table string) error {
	return m.next.Delete(ctx, table)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) mask(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, sub := range x {
			if m.matches(k) {
				out[k] = Mask
				continue
			}
			out[k] = m.mask(sub)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, sub := range x {
			out[i] = m.mask(sub)
		}
		return out
	default:
		return v
	}
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
