package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt_RoundTrip(t *testing.T) {
	mem := make([]byte, 16)
	tests := []struct {
		size int
		v    int64
	}{
		{1, -128},
		{2, 32767},
		{4, -7},
		{8, 1 << 40},
	}
	for _, tt := range tests {
		require.NoError(t, PutInt(mem, 8, tt.size, tt.v))
		got, err := Int(mem, 8, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.v, got, "size %d", tt.size)
	}
}

func TestPutInt_RangeLeavesMemory(t *testing.T) {
	mem := make([]byte, 4)
	require.NoError(t, PutInt(mem, 0, 4, 42))

	err := PutInt(mem, 0, 4, 1<<33)
	assert.ErrorIs(t, err, ErrRange)
	got, _ := Int(mem, 0, 4)
	assert.Equal(t, int64(42), got)

	assert.ErrorIs(t, PutInt(mem, 0, 3, 1), ErrSize)
	assert.ErrorIs(t, PutInt(mem, 2, 4, 1), ErrBounds)
}

func TestFloat_RoundTrip(t *testing.T) {
	mem := make([]byte, 8)
	require.NoError(t, PutFloat(mem, 0, 8, 3.14))
	got, err := Float(mem, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, 3.14, got)

	require.NoError(t, PutFloat(mem, 0, 4, 0.5))
	got, _ = Float(mem, 0, 4)
	assert.Equal(t, 0.5, got)

	assert.ErrorIs(t, PutFloat(mem, 0, 4, 1e300), ErrRange)
}

func TestBool_RoundTrip(t *testing.T) {
	mem := make([]byte, 4)
	require.NoError(t, PutBool(mem, 0, 4, true))
	b, _ := Bool(mem, 0, 4)
	assert.True(t, b)

	require.NoError(t, PutBool(mem, 0, 4, false))
	b, _ = Bool(mem, 0, 4)
	assert.False(t, b)
}

func TestString_LengthLimit(t *testing.T) {
	mem := make([]byte, 8)
	require.NoError(t, PutString(mem, 0, 8, "abcd"))
	s, err := String(mem, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "abcd", s)

	// a string of maxLen bytes leaves no room for the terminator
	err = PutString(mem, 0, 8, "12345678")
	assert.ErrorIs(t, err, ErrRange)
	s, _ = String(mem, 0, 8)
	assert.Equal(t, "abcd", s, "failed store must not touch memory")

	require.NoError(t, PutString(mem, 0, 8, "1234567"))
	s, _ = String(mem, 0, 8)
	assert.Equal(t, "1234567", s)

	require.NoError(t, PutString(mem, 0, 8, "x"))
	s, _ = String(mem, 0, 8)
	assert.Equal(t, "x", s, "shorter string must clear the previous tail")
}

func TestString_BlankPadded(t *testing.T) {
	mem := []byte("name    ")
	s, err := String(mem, 0, len(mem))
	require.NoError(t, err)
	assert.Equal(t, "name", s)
}

func TestNonBlankLen(t *testing.T) {
	assert.Equal(t, 3, NonBlankLen([]byte("abc  \x00\x00")))
	assert.Equal(t, 0, NonBlankLen([]byte("   ")))
	assert.Equal(t, 0, NonBlankLen(nil))
}

func TestCallbackSlot_RoundTrip(t *testing.T) {
	mem := make([]byte, 40)
	in := CallbackSlot{Func: -1, Params: 3, Returns: -1, Data: 1<<32 | 5}
	require.NoError(t, WriteCallbackSlot(mem, 8, in))

	out, err := ReadCallbackSlot(mem, 8)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ReadCallbackSlot(mem, 20)
	assert.ErrorIs(t, err, ErrBounds)
}
