package index

import (
	"fmt"
	"strings"
)

// TypeTag is the declared type of a field.
type TypeTag int

const (
	Int TypeTag = iota
	Double
	Bool
	String
	Callback
	Table
	Reference
	Pointer
)

var typeNames = [...]string{
	Int:       "int",
	Double:    "double",
	Bool:      "bool",
	String:    "string",
	Callback:  "callback",
	Table:     "table",
	Reference: "reference",
	Pointer:   "pointer",
}

func (t TypeTag) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseTypeTag parses a primitive type name.
func ParseTypeTag(s string) (TypeTag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == s {
			return TypeTag(i), true
		}
	}
	return 0, false
}

// FieldDescriptor is the reflection metadata of one field of an aggregate.
type FieldDescriptor struct {
	Name   string
	Type   TypeTag
	Size   int // bytes of one element
	Offset int // byte offset within the enclosing aggregate
	MaxLen int // String only, includes the terminator
	// Lower and Upper are inclusive array bounds. Upper < Lower denotes a scalar.
	Lower, Upper int
	Child        int // Table only: which aggregate describes the nested fields
	// Params and Returns are the declared callback arity; -1 means unspecified.
	Params, Returns int
	Doc             string
}

// IsScalar reports whether the field is not an array.
func (f FieldDescriptor) IsScalar() bool {
	return f.Upper < f.Lower
}

// Count returns the number of elements: 1 for scalars.
func (f FieldDescriptor) Count() int {
	if f.IsScalar() {
		return 1
	}
	return f.Upper - f.Lower + 1
}

// Extent returns the number of bytes the field occupies.
func (f FieldDescriptor) Extent() int {
	return f.Size * f.Count()
}

// InBounds reports whether i is a valid index of the array field.
func (f FieldDescriptor) InBounds(i int) bool {
	return !f.IsScalar() && i >= f.Lower && i <= f.Upper
}

// ElementOffset returns the byte offset of element i relative to the field.
func (f FieldDescriptor) ElementOffset(i int) int {
	return (i - f.Lower) * f.Size
}

// Bounds renders the declared dimension, e.g. "[1:5]", or "" for scalars.
func (f FieldDescriptor) Bounds() string {
	if f.IsScalar() {
		return ""
	}
	return fmt.Sprintf("[%d:%d]", f.Lower, f.Upper)
}

// Scalar returns a scalar descriptor. Chain the With* methods to refine it.
func Scalar(name string, t TypeTag, size, offset int) FieldDescriptor {
	return FieldDescriptor{
		Name:    name,
		Type:    t,
		Size:    size,
		Offset:  offset,
		Lower:   1,
		Upper:   0,
		Params:  -1,
		Returns: -1,
	}
}

// Array sets inclusive array bounds.
func (f FieldDescriptor) Array(lower, upper int) FieldDescriptor {
	f.Lower, f.Upper = lower, upper
	return f
}

// WithChild sets the nested aggregate of a Table field.
func (f FieldDescriptor) WithChild(child int) FieldDescriptor {
	f.Child = child
	return f
}

// WithMaxLen sets the capacity of a String field, terminator included.
func (f FieldDescriptor) WithMaxLen(n int) FieldDescriptor {
	f.MaxLen = n
	return f
}

// WithArity sets the declared parameter and return counts of a Callback field.
func (f FieldDescriptor) WithArity(params, returns int) FieldDescriptor {
	f.Params, f.Returns = params, returns
	return f
}

// WithDoc attaches documentation.
func (f FieldDescriptor) WithDoc(doc string) FieldDescriptor {
	f.Doc = doc
	return f
}

// TopLevel pairs a memory region with the aggregate descriptor of a well-known table.
type TopLevel struct {
	Memory []byte
	Field  FieldDescriptor
}
