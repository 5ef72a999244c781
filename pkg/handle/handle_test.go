package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RetainResolve(t *testing.T) {
	tbl := New[string]()

	h1, err := tbl.Retain("a")
	require.NoError(t, err)
	h2, err := tbl.Retain("b")
	require.NoError(t, err)

	assert.Greater(t, int64(h1), int64(None))
	assert.NotEqual(t, h1, h2)

	v, ok := tbl.Resolve(h1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_StaleHandleAfterReuse(t *testing.T) {
	tbl := New[string]()

	old, _ := tbl.Retain("first")
	require.True(t, tbl.Release(old))

	reused, _ := tbl.Retain("second")
	assert.NotEqual(t, old, reused, "slot reuse must bump the generation")

	_, ok := tbl.Resolve(old)
	assert.False(t, ok)
	v, ok := tbl.Resolve(reused)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	assert.False(t, tbl.Release(old), "stale release is a no-op")
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_InvalidHandles(t *testing.T) {
	tbl := New[int]()
	for _, h := range []Handle{None, -1, 12345} {
		_, ok := tbl.Resolve(h)
		assert.False(t, ok, h.String())
		assert.False(t, tbl.Valid(h))
	}
}

func TestTable_Replace(t *testing.T) {
	tbl := New[[]float64]()
	h, _ := tbl.Retain([]float64{1})

	assert.True(t, tbl.Replace(h, []float64{1, 2, 3}))
	v, _ := tbl.Resolve(h)
	assert.Equal(t, []float64{1, 2, 3}, v)

	tbl.Release(h)
	assert.False(t, tbl.Replace(h, nil))
}

func TestTable_Limit(t *testing.T) {
	tbl := New[int](WithLimit(2))
	_, err := tbl.Retain(1)
	require.NoError(t, err)
	h, err := tbl.Retain(2)
	require.NoError(t, err)

	_, err = tbl.Retain(3)
	assert.ErrorIs(t, err, ErrFull)

	tbl.Release(h)
	_, err = tbl.Retain(3)
	assert.NoError(t, err)
}
