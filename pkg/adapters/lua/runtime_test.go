package lua

import (
	"testing"

	"github.com/aretw0/irep/internal/runtime"
	"github.com/aretw0/irep/internal/testutils"
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deck = `
table1 = {
	i = 7,
	s = "deck",
	e = { 1, 2, 3 },
	f1 = function(a, b, c) return a + b + c end,
	f4 = function(a, b, c) return c, b, a end,
	f5 = function(...) return { ... } end,
	fooref = io.stdout,
	table2 = { [0] = { i = 10 }, [5] = { i = 15 } },
}
lazy = setmetatable({}, { __index = function(_, k) return #k end })
`

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := New()
	t.Cleanup(rt.Close)
	require.NoError(t, rt.DoString(deck))
	return rt
}

func TestLookup(t *testing.T) {
	rt := newRuntime(t)

	v, err := rt.Lookup("table1.i")
	require.NoError(t, err)
	assert.Equal(t, value.Number(7), v)

	v, err = rt.Lookup("table1.e")
	require.NoError(t, err)
	tbl, ok := v.(value.Table)
	require.True(t, ok)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, value.Number(2), tbl.Get(value.Number(2)))

	v, err = rt.Lookup("table1.table2[0].i")
	require.NoError(t, err)
	assert.Equal(t, value.Number(10), v)

	v, err = rt.Lookup("lazy.abcd")
	require.NoError(t, err)
	assert.Equal(t, value.Number(4), v, "__index takes part in lookups")

	v, err = rt.Lookup("table1.zz")
	require.NoError(t, err)
	assert.True(t, value.IsNil(v))

	v, err = rt.Lookup("table1.fooref")
	require.NoError(t, err)
	assert.Equal(t, value.KindUserdata, v.Kind())

	_, err = rt.Lookup("table1.i.x")
	assert.Error(t, err)

	_, err = rt.Lookup("table1..i")
	assert.Error(t, err)
}

func TestTable_All(t *testing.T) {
	rt := newRuntime(t)

	v, err := rt.Lookup("table1.table2")
	require.NoError(t, err)

	keys := map[string]bool{}
	for k := range v.(value.Table).All() {
		keys[value.FormatKey(k)] = true
	}
	assert.Equal(t, map[string]bool{"0": true, "5": true}, keys)
}

func TestFunction_Call(t *testing.T) {
	rt := newRuntime(t)

	v, err := rt.Lookup("table1.f4")
	require.NoError(t, err)
	fn, ok := v.(value.Function)
	require.True(t, ok)

	out, err := fn.Call([]value.Value{value.Number(1), value.Number(2), value.Number(3)}, 2)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Number(3), value.Number(2)}, out)

	out, err = fn.Call([]value.Value{value.Number(1)}, -1)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, value.Number(1), out[2])

	require.NoError(t, rt.DoString(`boom = function() error("boom") end`))
	v, err = rt.Lookup("boom")
	require.NoError(t, err)
	_, err = v.(value.Function).Call(nil, 1)
	assert.ErrorContains(t, err, "boom")
}

func TestPublish_GoValues(t *testing.T) {
	rt := newRuntime(t)

	add := value.Func(func(args []value.Value) ([]value.Value, error) {
		return []value.Value{args[0].(value.Number) + args[1].(value.Number)}, nil
	})
	conf := value.NewMap()
	conf.SetField("name", value.String("x"))
	conf.Set(value.Number(1), value.Bool(true))

	require.NoError(t, rt.Publish("add", add))
	require.NoError(t, rt.Publish("conf", conf))
	assert.Error(t, rt.Publish("", conf))

	assert.NoError(t, rt.DoString(`assert(add(1, 2) == 3)`))
	assert.NoError(t, rt.DoString(`assert(conf.name == "x" and conf[1] == true)`))
}

func TestEngine_ReadAndWrite(t *testing.T) {
	rt := newRuntime(t)
	compiled := testutils.CompileTable1(t)
	e := runtime.NewEngine(compiled.Index, rt)

	report := e.Read("table1")
	require.True(t, report.OK(), "unexpected errors: %v", report.Err())

	cb, err := e.Callback("table1.f1")
	require.NoError(t, err)
	out, err := cb.Evaluate(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, out)

	cb, err = e.Callback("table1.f4")
	require.NoError(t, err)
	out, err = cb.Evaluate(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, out)

	cb, err = e.Callback("table1.f5")
	require.NoError(t, err)
	out, err = cb.Evaluate(4, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, out)

	ref, err := e.Reference("table1.fooref")
	require.NoError(t, err)
	assert.Equal(t, value.KindUserdata, ref.Kind())

	report = e.Write("table1")
	require.True(t, report.OK(), "unexpected errors: %v", report.Err())
	assert.NoError(t, rt.DoString(`
		assert(table1.i == 7)
		assert(table1.s == "deck")
		assert(table1.e[4] == 3.14)
		assert(table1.table2[0].i == 10 and table1.table2[1].i == 1)
		assert(table1.f1(1, 1, 1) == 3)
		assert(table1.fooref == io.stdout)
		assert(table1.table3.f3 == nil)
	`))
}

func TestEngine_ReadErrors(t *testing.T) {
	rt := New()
	defer rt.Close()
	require.NoError(t, rt.DoString(`table1 = { i = 1.5, s = 12, table3 = { f3 = { 1, 2, 3 } } }`))
	compiled := testutils.CompileTable1(t)
	e := runtime.NewEngine(compiled.Index, rt)

	report := e.Read("table1")

	assert.Equal(t, 3, report.Count())
	assert.ErrorIs(t, report.Err(), domain.ErrTypeMismatch)
	assert.ErrorIs(t, report.Err(), domain.ErrArity)
}
