package lua

import (
	"fmt"

	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/value"
	lua "github.com/yuin/gopher-lua"
)

// Runtime is a ports.Runtime over a Lua state. It is not safe for concurrent use.
type Runtime struct {
	L      *lua.LState
	owned  bool
	chunks map[string]*lua.LFunction
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithState uses an existing state instead of creating one. Close leaves it open.
func WithState(L *lua.LState) Option {
	return func(r *Runtime) {
		if L != nil {
			r.L = L
			r.owned = false
		}
	}
}

// New creates a runtime with the standard libraries opened.
func New(opts ...Option) *Runtime {
	r := &Runtime{chunks: make(map[string]*lua.LFunction)}
	for _, opt := range opts {
		opt(r)
	}
	if r.L == nil {
		r.L = lua.NewState()
		r.owned = true
	}
	return r
}

// Close releases the state if the runtime created it.
func (r *Runtime) Close() {
	if r.owned {
		r.L.Close()
	}
}

// DoString runs a chunk of Lua source.
func (r *Runtime) DoString(src string) error {
	return r.L.DoString(src)
}

// DoFile runs a Lua file, typically an input deck.
func (r *Runtime) DoFile(path string) error {
	return r.L.DoFile(path)
}

// Lookup evaluates path as a Lua expression. An absent value is value.Nil;
// indexing a non-table is an error.
func (r *Runtime) Lookup(path string) (value.Value, error) {
	fn, err := r.chunk(path)
	if err != nil {
		return nil, err
	}
	r.L.Push(fn)
	if err := r.L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	lv := r.L.Get(-1)
	r.L.Pop(1)
	return fromLua(r.L, lv), nil
}

// chunk compiles "return <path>" once per path.
func (r *Runtime) chunk(path string) (*lua.LFunction, error) {
	if fn, ok := r.chunks[path]; ok {
		return fn, nil
	}
	segs, err := index.ParsePath(path)
	if err != nil {
		return nil, err
	}
	fn, err := r.L.LoadString("return " + index.FormatPath(segs))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	r.chunks[path] = fn
	return fn, nil
}

// Publish assigns v to the global name.
func (r *Runtime) Publish(name string, v value.Value) error {
	if name == "" {
		return fmt.Errorf("empty global name")
	}
	r.L.SetGlobal(name, toLua(r.L, v))
	return nil
}

// Set is Publish for callers that have no use for the error.
func (r *Runtime) Set(name string, v value.Value) {
	r.L.SetGlobal(name, toLua(r.L, v))
}
