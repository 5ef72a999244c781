package value

import (
	"fmt"
	"iter"
	"math"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindTable
	KindFunction
	// KindUserdata covers runtime values with no portable representation.
	KindUserdata
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindUserdata:
		return "userdata"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a dynamic value produced by a scripting runtime.
type Value interface {
	Kind() Kind
}

// Table is an associative aggregate of dynamic values.
type Table interface {
	Value
	// Len returns the sequence length: the largest n such that keys 1..n are all present.
	Len() int
	// Get returns the value stored under key, or Nil.
	Get(key Value) Value
	// All yields every key/value pair exactly once, in an unspecified order.
	All() iter.Seq2[Value, Value]
}

// Function is a callable dynamic value.
type Function interface {
	Value
	// Call invokes the function. nret is the number of results the caller
	// expects; -1 accepts whatever the function returns.
	Call(args []Value, nret int) ([]Value, error)
}

type nilValue struct{}

func (nilValue) Kind() Kind { return KindNil }
func (nilValue) String() string { return "nil" }

// Nil is the absent value.
var Nil Value = nilValue{}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Number is a numeric value. Integers are represented exactly up to 2^53.
type Number float64

func (Number) Kind() Kind { return KindNumber }

// Int reports whether n has no fractional part and fits an int64.
func (n Number) Int() (int64, bool) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// String is a string value.
type String string

func (String) Kind() Kind { return KindString }

// IsNil reports whether v is absent.
func IsNil(v Value) bool {
	return v == nil || v.Kind() == KindNil
}

// Describe renders v for diagnostics. Tables and functions are shown by kind only.
func Describe(v Value) string {
	if v == nil {
		return "nil"
	}
	switch x := v.(type) {
	case Bool:
		return fmt.Sprintf("%t", bool(x))
	case Number:
		return fmt.Sprintf("%g", float64(x))
	case String:
		return fmt.Sprintf("%q", string(x))
	default:
		return v.Kind().String()
	}
}
