package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// From converts decoded YAML/JSON data (or plain Go values) into a Value.
// Maps with string keys become field tables; slices become sequences starting at 1.
func From(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Nil, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Number(v), nil
	case int8:
		return Number(v), nil
	case int16:
		return Number(v), nil
	case int32:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint:
		return Number(v), nil
	case uint8:
		return Number(v), nil
	case uint16:
		return Number(v), nil
	case uint32:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case float64:
		return Number(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return Number(f), nil
	case string:
		return String(v), nil
	case []any:
		m := NewMap()
		for i, item := range v {
			iv, err := From(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i+1, err)
			}
			m.Set(Number(i+1), iv)
		}
		return m, nil
	case []float64:
		m := NewMap()
		for i, f := range v {
			m.Set(Number(i+1), Number(f))
		}
		return m, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			iv, err := From(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(String(k), iv)
		}
		return m, nil
	case map[any]any:
		m := NewMap()
		for k, item := range v {
			kv, err := From(k)
			if err != nil {
				return nil, err
			}
			switch kv.Kind() {
			case KindBool, KindNumber, KindString:
			default:
				return nil, fmt.Errorf("unsupported key kind %s", kv.Kind())
			}
			iv, err := From(item)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", k, err)
			}
			m.Set(kv, iv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", x)
	}
}

// ToGo converts v into plain Go data suitable for JSON or YAML encoding.
// A table whose keys are exactly 1..n becomes a slice; any other table becomes
// a map keyed by the formatted key. Functions and userdata are rendered as placeholders.
func ToGo(v Value) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Number:
		if i, ok := x.Int(); ok {
			return i
		}
		return float64(x)
	case String:
		return string(x)
	case Table:
		return tableToGo(x)
	}
	switch v.Kind() {
	case KindFunction:
		return "<function>"
	case KindUserdata:
		return "<userdata>"
	default:
		return nil
	}
}

func tableToGo(t Table) any {
	n := t.Len()
	count := 0
	for range t.All() {
		count++
	}
	if n > 0 && n == count {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = ToGo(t.Get(Number(i)))
		}
		return out
	}
	out := make(map[string]any, count)
	for k, item := range t.All() {
		out[FormatKey(k)] = ToGo(item)
	}
	return out
}

// FormatKey renders a table key as a map key or path segment.
func FormatKey(k Value) string {
	switch x := k.(type) {
	case String:
		return string(x)
	case Number:
		if i, ok := x.Int(); ok {
			return strconv.FormatInt(i, 10)
		}
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(x))
	default:
		return Describe(k)
	}
}

// Equal reports whether a and b are structurally equal. Any two functions are equal.
func Equal(a, b Value) bool {
	if IsNil(a) || IsNil(b) {
		return IsNil(a) && IsNil(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindTable:
		ta, tb := a.(Table), b.(Table)
		na := 0
		for k, va := range ta.All() {
			na++
			if !Equal(va, tb.Get(k)) {
				return false
			}
		}
		nb := 0
		for range tb.All() {
			nb++
		}
		return na == nb
	case KindFunction:
		return true
	default:
		return a == b
	}
}
