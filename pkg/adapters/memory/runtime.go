package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/value"
	"gopkg.in/yaml.v3"
)

// Runtime is a ports.Runtime over an in-memory table of globals.
// It is not safe for concurrent use.
type Runtime struct {
	globals *value.Map
}

// NewRuntime creates a runtime with no globals.
func NewRuntime() *Runtime {
	return &Runtime{globals: value.NewMap()}
}

// NewRuntimeFrom creates a runtime whose globals are the fields of g.
func NewRuntimeFrom(g *value.Map) *Runtime {
	if g == nil {
		g = value.NewMap()
	}
	return &Runtime{globals: g}
}

// LoadDeck reads a YAML or JSON document whose top-level keys become globals.
func LoadDeck(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck %s: %w", filepath.Base(path), err)
	}

	v, err := value.From(raw)
	if err != nil {
		return nil, fmt.Errorf("deck %s: %w", filepath.Base(path), err)
	}
	return NewRuntimeFrom(v.(*value.Map)), nil
}

// Set binds a global.
func (r *Runtime) Set(name string, v value.Value) {
	r.globals.SetField(name, v)
}

// Globals returns the table of globals.
func (r *Runtime) Globals() *value.Map {
	return r.globals
}

// Lookup walks path through the globals. Missing keys yield value.Nil;
// indexing into a scalar is an error.
func (r *Runtime) Lookup(path string) (value.Value, error) {
	segs, err := index.ParsePath(path)
	if err != nil {
		return nil, err
	}
	var cur value.Value = r.globals
	for i, s := range segs {
		if value.IsNil(cur) {
			return value.Nil, nil
		}
		t, ok := cur.(value.Table)
		if !ok {
			return nil, fmt.Errorf("attempt to index a %s value at %s", cur.Kind(), index.FormatPath(segs[:i]))
		}
		if s.IsIndex {
			cur = t.Get(value.Number(s.Index))
		} else {
			cur = t.Get(value.String(s.Name))
		}
	}
	if cur == nil {
		return value.Nil, nil
	}
	return cur, nil
}

// Publish binds v to a global name.
func (r *Runtime) Publish(name string, v value.Value) error {
	if name == "" {
		return fmt.Errorf("empty global name")
	}
	r.globals.SetField(name, v)
	return nil
}
