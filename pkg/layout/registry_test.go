package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack_NaturalAlignment(t *testing.T) {
	s, err := Pack([]Member{
		{Name: "i", Size: 4, Align: 4, Count: 1},
		{Name: "d", Size: 8, Align: 8, Count: 1},
		{Name: "s", Size: 8, Align: 1, Count: 1},
		{Name: "b", Size: 1, Align: 1, Count: 1},
		{Name: "e", Size: 8, Align: 8, Count: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 8, 16, 24, 32}, s.Offsets)
	assert.Equal(t, 8, s.Align)
	assert.Equal(t, 72, s.Size)
}

func TestPack_InvalidSize(t *testing.T) {
	_, err := Pack([]Member{{Name: "x", Size: 0}})
	assert.Error(t, err)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 8, AlignUp(5, 8))
	assert.Equal(t, 16, AlignUp(16, 8))
	assert.Equal(t, 5, AlignUp(5, 1))
	assert.Equal(t, 4, NaturalAlign(4))
	assert.Equal(t, 8, NaturalAlign(24))
}

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()
	r.Register("timeitem", Struct{Size: TimeItemSize, Align: 8})

	s, ok := r.Lookup("timeitem")
	assert.True(t, ok)
	assert.Equal(t, 16, s.Size)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}
