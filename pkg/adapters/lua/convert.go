package lua

import (
	"iter"

	"github.com/aretw0/irep/pkg/value"
	lua "github.com/yuin/gopher-lua"
)

// table is a lazy view of a Lua table.
type table struct {
	L *lua.LState
	t *lua.LTable
}

func (t *table) Kind() value.Kind { return value.KindTable }

// Len returns the border starting from the array part.
func (t *table) Len() int {
	n := t.t.Len()
	for t.t.RawGetInt(n+1) != lua.LNil {
		n++
	}
	return n
}

func (t *table) Get(key value.Value) value.Value {
	if value.IsNil(key) {
		return value.Nil
	}
	return fromLua(t.L, t.t.RawGet(toLua(t.L, key)))
}

func (t *table) All() iter.Seq2[value.Value, value.Value] {
	return func(yield func(value.Value, value.Value) bool) {
		for k, v := t.t.Next(lua.LNil); k != lua.LNil; k, v = t.t.Next(k) {
			if !yield(fromLua(t.L, k), fromLua(t.L, v)) {
				return
			}
		}
	}
}

// function is a Lua function called in protected mode.
type function struct {
	L  *lua.LState
	fn *lua.LFunction
}

func (f *function) Kind() value.Kind { return value.KindFunction }

func (f *function) Call(args []value.Value, nret int) ([]value.Value, error) {
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(f.L, a)
	}
	n := nret
	if n < 0 {
		n = lua.MultRet
	}

	top := f.L.GetTop()
	if err := f.L.CallByParam(lua.P{Fn: f.fn, NRet: n, Protect: true}, largs...); err != nil {
		return nil, err
	}
	got := f.L.GetTop() - top
	out := make([]value.Value, got)
	for i := range out {
		out[i] = fromLua(f.L, f.L.Get(top+i+1))
	}
	f.L.Pop(got)
	return out, nil
}

// opaque carries userdata, threads and channels through reference slots.
type opaque struct {
	lv lua.LValue
}

func (opaque) Kind() value.Kind { return value.KindUserdata }

func fromLua(L *lua.LState, lv lua.LValue) value.Value {
	switch x := lv.(type) {
	case lua.LBool:
		return value.Bool(x)
	case lua.LNumber:
		return value.Number(x)
	case lua.LString:
		return value.String(x)
	case *lua.LTable:
		return &table{L: L, t: x}
	case *lua.LFunction:
		return &function{L: L, fn: x}
	}
	if lv == nil || lv.Type() == lua.LTNil {
		return value.Nil
	}
	return opaque{lv: lv}
}

func toLua(L *lua.LState, v value.Value) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case value.Bool:
		return lua.LBool(x)
	case value.Number:
		return lua.LNumber(x)
	case value.String:
		return lua.LString(x)
	case *table:
		return x.t
	case *function:
		return x.fn
	case opaque:
		return x.lv
	case value.Table:
		t := L.NewTable()
		for k, item := range x.All() {
			t.RawSet(toLua(L, k), toLua(L, item))
		}
		return t
	case value.Function:
		return L.NewFunction(goFunction(x))
	}
	return lua.LNil
}

// goFunction exposes a Go function to Lua. Errors are raised as Lua errors.
func goFunction(fn value.Function) lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]value.Value, L.GetTop())
		for i := range args {
			args[i] = fromLua(L, L.Get(i+1))
		}
		out, err := fn.Call(args, -1)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		for _, o := range out {
			L.Push(toLua(L, o))
		}
		return len(out)
	}
}
