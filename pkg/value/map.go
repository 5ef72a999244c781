package value

import "iter"

// Map is an in-memory Table that preserves insertion order.
// Keys must be Bool, Number or String values.
type Map struct {
	keys  []Value
	index map[Value]int
	vals  []Value
}

// NewMap creates an empty table.
func NewMap() *Map {
	return &Map{index: make(map[Value]int)}
}

func (m *Map) Kind() Kind { return KindTable }

// Set stores v under key. Storing Nil removes the key.
func (m *Map) Set(key, v Value) {
	if m.index == nil {
		m.index = make(map[Value]int)
	}
	key = normalizeKey(key)
	i, ok := m.index[key]
	if IsNil(v) {
		if ok {
			m.remove(i)
		}
		return
	}
	if ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// SetField is shorthand for Set(String(name), v).
func (m *Map) SetField(name string, v Value) {
	m.Set(String(name), v)
}

// Append stores v under the next sequence index.
func (m *Map) Append(v Value) {
	m.Set(Number(m.Len()+1), v)
}

func (m *Map) remove(i int) {
	delete(m.index, m.keys[i])
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}

// Get returns the value under key, or Nil.
func (m *Map) Get(key Value) Value {
	if m == nil || m.index == nil {
		return Nil
	}
	if i, ok := m.index[normalizeKey(key)]; ok {
		return m.vals[i]
	}
	return Nil
}

// Field is shorthand for Get(String(name)).
func (m *Map) Field(name string) Value {
	return m.Get(String(name))
}

// Len returns the sequence length of the table.
func (m *Map) Len() int {
	n := 0
	for !IsNil(m.Get(Number(n + 1))) {
		n++
	}
	return n
}

// Count returns the number of entries, sequence or not.
func (m *Map) Count() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// All yields entries in insertion order.
func (m *Map) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// normalizeKey folds nil interfaces onto Nil so that lookups stay comparable.
func normalizeKey(key Value) Value {
	if key == nil {
		return Nil
	}
	return key
}

// Func adapts a Go function to the Function interface.
type Func func(args []Value) ([]Value, error)

func (Func) Kind() Kind { return KindFunction }

// Call invokes f and adjusts the result list to nret values, padding with Nil.
func (f Func) Call(args []Value, nret int) ([]Value, error) {
	out, err := f(args)
	if err != nil {
		return nil, err
	}
	if nret < 0 || len(out) == nret {
		return out, nil
	}
	adjusted := make([]Value, nret)
	for i := range adjusted {
		if i < len(out) {
			adjusted[i] = out[i]
		} else {
			adjusted[i] = Nil
		}
	}
	return adjusted, nil
}
