package index

import (
	"fmt"
	"slices"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/layout"
)

// Index is the frozen reflection index: per-aggregate field descriptor lists
// plus the registry of well-known tables.
//
// The descriptors are immutable once New returns. The memory regions of the
// tables are shared with the caller and are written by the engine.
type Index struct {
	aggregates [][]FieldDescriptor
	fields     []map[string]int
	tables     []entry
	byName     map[string]int
}

type entry struct {
	name string
	top  TopLevel
}

// NamedTable binds a well-known table name to its TopLevel descriptor.
type NamedTable struct {
	Name string
	TopLevel
}

// New validates and freezes an index. Each aggregate list may be terminated by
// a sentinel descriptor with an empty name; descriptors after it are ignored.
// Validation failures are returned as a *domain.AggregateError.
func New(aggregates [][]FieldDescriptor, tables []NamedTable) (*Index, error) {
	ix := &Index{
		aggregates: make([][]FieldDescriptor, len(aggregates)),
		fields:     make([]map[string]int, len(aggregates)),
		byName:     make(map[string]int, len(tables)),
	}
	var errs []error
	report := func(path, format string, args ...any) {
		errs = append(errs, domain.NewFieldError(path, domain.ErrSchema, format, args...))
	}

	// 1. Copy aggregates up to their sentinel and index names
	for i, list := range aggregates {
		n := slices.IndexFunc(list, func(f FieldDescriptor) bool { return f.Name == "" })
		if n < 0 {
			n = len(list)
		}
		ix.aggregates[i] = slices.Clone(list[:n])
		ix.fields[i] = make(map[string]int, n)
		for j, f := range ix.aggregates[i] {
			if _, dup := ix.fields[i][f.Name]; dup {
				report(aggregatePath(i, f.Name), "duplicate field name")
				continue
			}
			ix.fields[i][f.Name] = j
		}
	}

	// 2. Validate every field of every aggregate
	for i, list := range ix.aggregates {
		for _, f := range list {
			ix.validateField(aggregatePath(i, f.Name), f, report)
		}
	}

	// 3. Register the well-known tables
	for _, t := range tables {
		if t.Name == "" {
			report("<table>", "empty table name")
			continue
		}
		if _, dup := ix.byName[t.Name]; dup {
			report(t.Name, "duplicate table name")
			continue
		}
		f := t.Field
		if f.Name == "" {
			f.Name = t.Name
		}
		if f.Type != Table {
			report(t.Name, "well-known table must have type table, got %s", f.Type)
			continue
		}
		ix.validateField(t.Name, f, report)
		if need := f.Offset + f.Extent(); len(t.Memory) < need {
			report(t.Name, "memory region holds %d bytes, need %d", len(t.Memory), need)
		}
		ix.byName[t.Name] = len(ix.tables)
		ix.tables = append(ix.tables, entry{name: t.Name, top: TopLevel{Memory: t.Memory, Field: f}})
	}

	// 4. Nested aggregates must not contain themselves
	if cycle := ix.findCycle(); cycle >= 0 {
		report(aggregatePath(cycle, ""), "aggregate contains itself")
	}

	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}
	return ix, nil
}

func aggregatePath(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("aggregate[%d]", i)
	}
	return fmt.Sprintf("aggregate[%d].%s", i, name)
}

func (ix *Index) validateField(path string, f FieldDescriptor, report func(string, string, ...any)) {
	if f.Size <= 0 {
		report(path, "size must be positive, got %d", f.Size)
		return
	}
	if f.Offset < 0 {
		report(path, "negative offset %d", f.Offset)
	}
	switch f.Type {
	case Int:
		if f.Size != 1 && f.Size != 2 && f.Size != 4 && f.Size != 8 {
			report(path, "int size must be 1, 2, 4 or 8, got %d", f.Size)
		}
	case Double:
		if f.Size != 4 && f.Size != 8 {
			report(path, "double size must be 4 or 8, got %d", f.Size)
		}
	case Bool:
	case String:
		if f.MaxLen < 1 || f.MaxLen > f.Size {
			report(path, "string capacity %d must be within [1, %d]", f.MaxLen, f.Size)
		}
	case Callback:
		if !f.IsScalar() {
			report(path, "callback fields cannot be arrays")
		}
		if f.Returns == 0 {
			report(path, "callback declares zero return values")
		}
		if f.Params < -1 || f.Returns < -1 {
			report(path, "invalid arity (%d, %d)", f.Params, f.Returns)
		}
		if f.Size < layout.CallbackSlotSize {
			report(path, "callback slot needs %d bytes, got %d", layout.CallbackSlotSize, f.Size)
		}
	case Reference:
		if !f.IsScalar() {
			report(path, "reference fields cannot be arrays")
		}
		if f.Size < layout.ReferenceSlotSize {
			report(path, "reference slot needs %d bytes, got %d", layout.ReferenceSlotSize, f.Size)
		}
	case Table:
		if f.Child < 0 || f.Child >= len(ix.aggregates) {
			report(path, "child aggregate %d does not exist", f.Child)
			return
		}
		for _, c := range ix.aggregates[f.Child] {
			if end := c.Offset + c.Extent(); c.Size > 0 && end > f.Size {
				report(path+"."+c.Name, "field ends at byte %d beyond aggregate size %d", end, f.Size)
			}
		}
	case Pointer:
	default:
		report(path, "unknown type tag %d", int(f.Type))
	}
}

// findCycle returns an aggregate that (transitively) contains itself, or -1.
func (ix *Index) findCycle() int {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(ix.aggregates))
	var visit func(int) bool
	visit = func(i int) bool {
		state[i] = visiting
		for _, f := range ix.aggregates[i] {
			if f.Type != Table || f.Child < 0 || f.Child >= len(ix.aggregates) {
				continue
			}
			switch state[f.Child] {
			case visiting:
				return true
			case unvisited:
				if visit(f.Child) {
					return true
				}
			}
		}
		state[i] = done
		return false
	}
	for i := range ix.aggregates {
		if state[i] == unvisited && visit(i) {
			return i
		}
	}
	return -1
}

// Table returns the well-known table registered under name.
func (ix *Index) Table(name string) (TopLevel, bool) {
	i, ok := ix.byName[name]
	if !ok {
		return TopLevel{}, false
	}
	return ix.tables[i].top, true
}

// Tables returns the names of the well-known tables in registration order.
func (ix *Index) Tables() []string {
	names := make([]string, len(ix.tables))
	for i, t := range ix.tables {
		names[i] = t.name
	}
	return names
}

// Len returns the number of well-known tables.
func (ix *Index) Len() int {
	return len(ix.tables)
}

// Fields returns the descriptors of an aggregate. The slice must not be modified.
func (ix *Index) Fields(child int) []FieldDescriptor {
	if child < 0 || child >= len(ix.aggregates) {
		return nil
	}
	return ix.aggregates[child]
}

// Field looks up a field of an aggregate by name.
func (ix *Index) Field(child int, name string) (FieldDescriptor, bool) {
	if child < 0 || child >= len(ix.fields) {
		return FieldDescriptor{}, false
	}
	j, ok := ix.fields[child][name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return ix.aggregates[child][j], true
}

// Aggregates returns the number of aggregate descriptor lists.
func (ix *Index) Aggregates() int {
	return len(ix.aggregates)
}
