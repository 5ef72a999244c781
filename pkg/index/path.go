package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/irep/pkg/domain"
)

// Segment is one token of a path: a field name or a bracketed index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// ParsePath tokenizes a path of the form name ('.' name | '[' ['-'] digits ']')*.
func ParsePath(path string) ([]Segment, error) {
	fail := func(format string, args ...any) ([]Segment, error) {
		return nil, domain.NewFieldError(path, domain.ErrPath, format, args...)
	}
	if path == "" {
		return fail("empty path")
	}

	var segs []Segment
	i := 0
	expectName := true
	for i < len(path) {
		switch c := path[i]; {
		case expectName:
			j := i
			for j < len(path) && isNameByte(path[j], j == i) {
				j++
			}
			if j == i {
				return fail("expected a name at offset %d", i)
			}
			segs = append(segs, Segment{Name: path[i:j]})
			i = j
			expectName = false
		case c == '.':
			if i+1 >= len(path) {
				return fail("trailing '.'")
			}
			i++
			expectName = true
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return fail("unterminated '['")
			}
			tok := path[i+1 : i+end]
			n, err := strconv.Atoi(tok)
			if err != nil || tok == "" || tok[0] == '+' {
				return fail("invalid index %q", tok)
			}
			segs = append(segs, Segment{Index: n, IsIndex: true})
			i += end + 1
		default:
			return fail("unexpected %q at offset %d", c, i)
		}
	}
	return segs, nil
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

// FormatPath renders segments back into the canonical path form.
func FormatPath(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Location is a resolved path: the descriptor found there and its byte offset
// within the table's memory.
type Location struct {
	Table   string
	Memory  []byte
	Field   FieldDescriptor
	Offset  int
	Indexed bool // the array dimension of Field has been consumed by an index
	Path    string
	Depth   int // number of segments after the table name
}

// IsArray reports whether the location still denotes a whole array.
func (l Location) IsArray() bool {
	return !l.Field.IsScalar() && !l.Indexed
}

// Resolve walks a path through the index. The first segment names a well-known
// table; the remaining segments select fields and array elements.
func (ix *Index) Resolve(path string) (Location, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return Location{}, err
	}
	if segs[0].IsIndex {
		return Location{}, domain.NewFieldError(path, domain.ErrPath, "path must start with a table name")
	}
	top, ok := ix.Table(segs[0].Name)
	if !ok {
		return Location{}, domain.NewFieldError(segs[0].Name, domain.ErrLookup, "unknown table %q", segs[0].Name)
	}

	loc := Location{
		Table:  segs[0].Name,
		Memory: top.Memory,
		Field:  top.Field,
		Offset: top.Field.Offset,
		Path:   segs[0].Name,
	}
	for _, s := range segs[1:] {
		if s.IsIndex {
			if !loc.IsArray() {
				return Location{}, domain.NewFieldError(loc.Path+s.String(), domain.ErrPath, "%s is not an array", loc.Path)
			}
			if !loc.Field.InBounds(s.Index) {
				return Location{}, domain.NewFieldError(loc.Path+s.String(), domain.ErrPath,
					"index %d outside %s", s.Index, loc.Field.Bounds())
			}
			loc.Offset += loc.Field.ElementOffset(s.Index)
			loc.Indexed = true
			loc.Path += s.String()
			loc.Depth++
			continue
		}

		next := loc.Path + "." + s.Name
		if loc.Field.Type != Table {
			return Location{}, domain.NewFieldError(next, domain.ErrPath, "%s is not an aggregate", loc.Path)
		}
		if loc.IsArray() {
			return Location{}, domain.NewFieldError(next, domain.ErrPath, "%s is an array; index it first", loc.Path)
		}
		child, ok := ix.Field(loc.Field.Child, s.Name)
		if !ok {
			return Location{}, domain.NewFieldError(next, domain.ErrLookup, "no field %q in %s", s.Name, loc.Path)
		}
		loc.Offset += child.Offset
		loc.Field = child
		loc.Indexed = false
		loc.Path = next
		loc.Depth++
	}
	return loc, nil
}

// MustResolve is Resolve for paths known to be valid. It panics otherwise.
func (ix *Index) MustResolve(path string) Location {
	loc, err := ix.Resolve(path)
	if err != nil {
		panic(fmt.Sprintf("index: %v", err))
	}
	return loc
}
