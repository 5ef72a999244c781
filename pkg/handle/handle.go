// Package handle provides arena-backed handle tables with generation-checked
// indices. A handle stays valid until it is released; once its slot is reused
// the old handle no longer resolves.
package handle

import (
	"errors"
	"fmt"
)

// Handle is an opaque reference to a value retained by a Table.
// The zero Handle never resolves.
type Handle int64

// None is the unset handle.
const None Handle = 0

// ErrFull is returned by Retain when the table reached its capacity.
var ErrFull = errors.New("handle table full")

func (h Handle) index() int { return int(uint32(h)) - 1 }
func (h Handle) generation() uint32 { return uint32(uint64(h) >> 32) }

func (h Handle) String() string {
	if h <= None {
		return fmt.Sprintf("handle(%d)", int64(h))
	}
	return fmt.Sprintf("handle(%d#%d)", h.index(), h.generation())
}

func makeHandle(idx int, gen uint32) Handle {
	return Handle(int64(gen)<<32 | int64(uint32(idx+1)))
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// Table is a growable arena of values addressed by Handle.
// It is not safe for concurrent use.
type Table[T any] struct {
	slots []slot[T]
	free  []int
	limit int
	live  int
}

// Option configures a Table.
type Option func(*config)

type config struct {
	limit int
}

// WithLimit caps the number of live handles. Zero means unlimited.
func WithLimit(n int) Option {
	return func(c *config) {
		c.limit = n
	}
}

// New creates an empty table.
func New[T any](opts ...Option) *Table[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Table[T]{limit: cfg.limit}
}

// Retain stores v and returns a handle to it.
func (t *Table[T]) Retain(v T) (Handle, error) {
	if t.limit > 0 && t.live >= t.limit {
		return None, ErrFull
	}
	var idx int
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.slots) >= 1<<31-1 {
			return None, ErrFull
		}
		t.slots = append(t.slots, slot[T]{})
		idx = len(t.slots) - 1
	}
	s := &t.slots[idx]
	// generations start at 1 and wrap within 31 bits so handles stay positive
	s.gen = s.gen%(1<<31-1) + 1
	s.live = true
	s.val = v
	t.live++
	return makeHandle(idx, s.gen), nil
}

func (t *Table[T]) lookup(h Handle) *slot[T] {
	if h <= None {
		return nil
	}
	idx := h.index()
	if idx < 0 || idx >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	if !s.live || s.gen != h.generation() {
		return nil
	}
	return s
}

// Resolve returns the value behind h.
func (t *Table[T]) Resolve(h Handle) (T, bool) {
	if s := t.lookup(h); s != nil {
		return s.val, true
	}
	var zero T
	return zero, false
}

// Valid reports whether h currently resolves.
func (t *Table[T]) Valid(h Handle) bool {
	return t.lookup(h) != nil
}

// Replace swaps the value behind a live handle.
func (t *Table[T]) Replace(h Handle, v T) bool {
	s := t.lookup(h)
	if s == nil {
		return false
	}
	s.val = v
	return true
}

// Release frees the slot behind h. Releasing a stale handle is a no-op.
func (t *Table[T]) Release(h Handle) bool {
	s := t.lookup(h)
	if s == nil {
		return false
	}
	var zero T
	s.val = zero
	s.live = false
	t.live--
	t.free = append(t.free, h.index())
	return true
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	return t.live
}
