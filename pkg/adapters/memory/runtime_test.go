package memory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_Lookup(t *testing.T) {
	e := value.NewMap()
	e.Append(value.Number(1.5))
	e.Append(value.Number(2.5))
	table1 := value.NewMap()
	table1.SetField("i", value.Number(7))
	table1.SetField("e", e)

	rt := memory.NewRuntime()
	rt.Set("table1", table1)

	v, err := rt.Lookup("table1.i")
	require.NoError(t, err)
	assert.Equal(t, value.Number(7), v)

	v, err = rt.Lookup("table1.e[2]")
	require.NoError(t, err)
	assert.Equal(t, value.Number(2.5), v)

	v, err = rt.Lookup("missing.deeper")
	require.NoError(t, err)
	assert.True(t, value.IsNil(v))

	_, err = rt.Lookup("table1.i.x")
	assert.ErrorContains(t, err, "attempt to index a number")

	_, err = rt.Lookup("table1..i")
	assert.Error(t, err)
}

func TestRuntime_Publish(t *testing.T) {
	rt := memory.NewRuntime()
	require.NoError(t, rt.Publish("out", value.String("x")))
	v, _ := rt.Lookup("out")
	assert.Equal(t, value.String("x"), v)
	assert.Error(t, rt.Publish("", value.Nil))
}

func TestLoadDeck(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("table1:\n  i: 7\n  e: [1, 2, 3]\n  s: hello\n"), 0o644))

	rt, err := memory.LoadDeck(yamlPath)
	require.NoError(t, err)
	v, _ := rt.Lookup("table1.e")
	assert.Equal(t, 3, v.(value.Table).Len())
	v, _ = rt.Lookup("table1.s")
	assert.Equal(t, value.String("hello"), v)

	jsonPath := filepath.Join(dir, "deck.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"table1": {"b": true}}`), 0o644))
	rt, err = memory.LoadDeck(jsonPath)
	require.NoError(t, err)
	v, _ = rt.Lookup("table1.b")
	assert.Equal(t, value.Bool(true), v)

	_, err = memory.LoadDeck(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
