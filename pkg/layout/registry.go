package layout

import "fmt"

// Member is one field of a struct being laid out.
type Member struct {
	Name  string
	Size  int // size of one element
	Align int // alignment of one element
	Count int // number of elements, 1 for scalars
}

// Struct is a computed struct layout.
type Struct struct {
	Size    int
	Align   int
	Offsets []int
}

// AlignUp rounds off up to a multiple of align.
func AlignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	return (off + align - 1) / align * align
}

// NaturalAlign returns the alignment of a primitive of size bytes, capped at 8.
func NaturalAlign(size int) int {
	switch {
	case size >= 8:
		return 8
	case size >= 4:
		return 4
	case size >= 2:
		return 2
	default:
		return 1
	}
}

// Pack lays members out in order with C-like natural alignment.
func Pack(members []Member) (Struct, error) {
	s := Struct{Align: 1, Offsets: make([]int, len(members))}
	off := 0
	for i, m := range members {
		if m.Size <= 0 {
			return Struct{}, fmt.Errorf("member %q: invalid size %d", m.Name, m.Size)
		}
		count := max(m.Count, 1)
		align := max(m.Align, 1)
		off = AlignUp(off, align)
		s.Offsets[i] = off
		off += m.Size * count
		s.Align = max(s.Align, align)
	}
	s.Size = AlignUp(off, s.Align)
	if s.Size == 0 {
		s.Size = s.Align
	}
	return s, nil
}

// TypeRegistry tracks the layout of named struct types.
type TypeRegistry struct {
	types map[string]Struct
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]Struct)}
}

// Register records the layout of a struct type.
func (r *TypeRegistry) Register(name string, s Struct) {
	r.types[name] = s
}

// Lookup returns the layout of a registered struct type.
func (r *TypeRegistry) Lookup(name string) (Struct, bool) {
	s, ok := r.types[name]
	return s, ok
}
