package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldError_Message(t *testing.T) {
	err := NewFieldError("table1.e[9]", ErrPath, "index %d outside [%d, %d]", 9, 1, 5)
	assert.Equal(t, "table1.e[9]: path error: index 9 outside [1, 5]", err.Error())
	assert.ErrorIs(t, err, ErrPath)

	err = NewFieldError("table1.i", ErrTypeMismatch, "expected integer").WithValue("7.5")
	assert.Contains(t, err.Error(), "(got 7.5)")
}

func TestErrStackIsOverflow(t *testing.T) {
	err := NewFieldError("t.a", ErrStack, "depth 3 exceeds 2")
	assert.ErrorIs(t, err, ErrStack)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.NotErrorIs(t, NewFieldError("t.s", ErrOverflow, "too long"), ErrStack)
}

func TestReport_Err(t *testing.T) {
	r := NewReport("read", "table1")
	assert.NoError(t, r.Err())
	assert.True(t, r.OK())

	r.Add(NewFieldError("table1.x", ErrLookup, "no field"))
	r.Add(NewFieldError("table1.i", ErrTypeMismatch, "expected integer"))
	assert.Equal(t, 2, r.Count())

	err := r.Err()
	require.Error(t, err)
	assert.Len(t, FieldErrors(err), 2)
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "table1.x", fe.Path)
}

func TestReport_CallbackNames(t *testing.T) {
	r := NewReport("read", "table1")
	id := SlotID{Table: "table1", Offset: 64}
	r.Callbacks[id] = "table1.f1"

	name, ok := r.CallbackName(id)
	assert.True(t, ok)
	assert.Equal(t, "table1.f1", name)
	assert.Equal(t, "table1+64", id.String())
}
