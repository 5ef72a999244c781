package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/handle"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/layout"
	"github.com/aretw0/irep/pkg/value"
)

// ConstantFunc is the function handle stored in a callback slot whose values
// come from its constant buffer.
const ConstantFunc int64 = -1

func (r *reader) readCallback(v value.Value, f index.FieldDescriptor) {
	off := r.ctx.offset
	r.report.Callbacks[domain.SlotID{Table: r.table, Offset: off}] = r.ctx.String()

	if f.Returns == 0 {
		r.fail(domain.ErrArity, "callback declares zero return values")
		return
	}
	slot, err := layout.ReadCallbackSlot(r.mem, off)
	if err != nil {
		r.e.record(r.report, codecError(r.ctx.String(), err))
		return
	}

	switch v.Kind() {
	case value.KindFunction:
		fn, ok := v.(value.Function)
		if !ok {
			r.failValue(v, domain.ErrTypeMismatch, "function value is not callable")
			return
		}
		h, err := r.e.functions.Retain(fn)
		if err != nil {
			r.fail(domain.ErrAllocation, "cannot retain function: %v", err)
			return
		}
		// The constant buffer stays allocated for a later constant fallback.
		r.e.functions.Release(handle.Handle(slot.Func))
		slot.Func = int64(h)
		slot.Params = int32(f.Params)
		slot.Returns = int32(f.Returns)

	case value.KindNumber:
		n := float64(v.(value.Number))
		size := max(f.Returns, 1)
		buf := make([]float64, size)
		for i := range buf {
			buf[i] = n
		}
		if !r.commitConstants(&slot, f, buf) {
			return
		}

	case value.KindTable:
		buf, ok := r.constantArray(v.(value.Table), f)
		if !ok || !r.commitConstants(&slot, f, buf) {
			return
		}

	default:
		r.failValue(v, domain.ErrTypeMismatch, "callback expects a function, a number or a table of numbers")
		return
	}

	if err := layout.WriteCallbackSlot(r.mem, off, slot); err != nil {
		r.e.record(r.report, codecError(r.ctx.String(), err))
		return
	}
	r.assigned(v)
}

// constantArray validates a table of constants against the declared return count.
func (r *reader) constantArray(t value.Table, f index.FieldDescriptor) ([]float64, bool) {
	n := t.Len()
	switch {
	case n == 0:
		r.fail(domain.ErrArity, "empty constant array")
		return nil, false
	case f.Returns > 0 && n != f.Returns:
		r.fail(domain.ErrArity, "expected %d values, got %d", f.Returns, n)
		return nil, false
	}

	buf := make([]float64, n)
	ok := true
	for k, item := range t.All() {
		key, isNum := k.(value.Number)
		i, whole := key.Int()
		if !isNum || !whole || i < 1 || int(i) > n {
			m := r.ctx.key(value.FormatKey(k))
			r.fail(domain.ErrTypeMismatch, "constant arrays must be sequences")
			r.ctx.restore(m)
			ok = false
			continue
		}
		num, isNum := item.(value.Number)
		if !isNum {
			m := r.ctx.index(int(i), 0)
			r.failValue(item, domain.ErrTypeMismatch, "expected a number")
			r.ctx.restore(m)
			ok = false
			continue
		}
		buf[i-1] = float64(num)
	}
	return buf, ok
}

// commitConstants stores buf as the slot's constant buffer. The resolved
// return count becomes len(buf).
func (r *reader) commitConstants(slot *layout.CallbackSlot, f index.FieldDescriptor, buf []float64) bool {
	data := handle.Handle(slot.Data)
	if !r.e.buffers.Replace(data, buf) {
		h, err := r.e.buffers.Retain(buf)
		if err != nil {
			r.fail(domain.ErrAllocation, "cannot allocate constant buffer of %d values: %v", len(buf), err)
			return false
		}
		data = h
	}
	r.e.functions.Release(handle.Handle(slot.Func))
	slot.Func = ConstantFunc
	slot.Data = int64(data)
	slot.Params = int32(f.Params)
	slot.Returns = int32(len(buf))
	return true
}

// Callback is a decoded callback slot.
type Callback struct {
	// Name is the full path of the slot.
	Name string
	// Params and Returns are the resolved arity; -1 means unspecified.
	Params  int
	Returns int

	fn     value.Function
	consts []float64
}

// Callback decodes the callback slot at path.
func (e *Engine) Callback(path string) (*Callback, error) {
	loc, err := e.index.Resolve(path)
	if err != nil {
		return nil, err
	}
	if loc.Field.Type != index.Callback {
		return nil, domain.NewFieldError(loc.Path, domain.ErrTypeMismatch, "%s field is not a callback", loc.Field.Type)
	}
	slot, err := layout.ReadCallbackSlot(loc.Memory, loc.Offset)
	if err != nil {
		return nil, codecError(loc.Path, err)
	}

	cb := &Callback{Name: loc.Path, Params: int(slot.Params), Returns: int(slot.Returns)}
	switch {
	case slot.Func == ConstantFunc:
		consts, ok := e.buffers.Resolve(handle.Handle(slot.Data))
		if !ok {
			return nil, domain.NewFieldError(loc.Path, domain.ErrUndefined, "stale constant buffer")
		}
		cb.consts = consts
	case slot.Func > 0:
		fn, ok := e.functions.Resolve(handle.Handle(slot.Func))
		if !ok {
			return nil, domain.NewFieldError(loc.Path, domain.ErrUndefined, "stale function handle")
		}
		cb.fn = fn
	default:
		// never assigned: arity comes from the declaration
		cb.Params, cb.Returns = loc.Field.Params, loc.Field.Returns
	}
	return cb, nil
}

// Defined reports whether the slot holds a function or constants.
func (c *Callback) Defined() bool {
	return c.fn != nil || c.consts != nil
}

// IsConstant reports whether the slot holds constants instead of a function.
func (c *Callback) IsConstant() bool {
	return c.fn == nil && c.consts != nil
}

// Constants returns a copy of the constant buffer.
func (c *Callback) Constants() []float64 {
	return slices.Clone(c.consts)
}

// Evaluate invokes the callback. Constants are returned as they are; functions
// receive the first Params arguments (all of them when unspecified) and must
// return Returns numbers, or a single table of numbers when Returns is unspecified.
func (c *Callback) Evaluate(args ...float64) ([]float64, error) {
	switch {
	case c.fn != nil:
		return c.call(args)
	case c.consts != nil:
		return slices.Clone(c.consts), nil
	default:
		return nil, domain.NewFieldError(c.Name, domain.ErrUndefined, "no function or constants assigned")
	}
}

func (c *Callback) call(args []float64) ([]float64, error) {
	if c.Params >= 0 {
		if len(args) < c.Params {
			return nil, domain.NewFieldError(c.Name, domain.ErrArity, "needs %d arguments, got %d", c.Params, len(args))
		}
		args = args[:c.Params]
	}
	in := make([]value.Value, len(args))
	for i, a := range args {
		in[i] = value.Number(a)
	}

	if c.Returns < 0 {
		out, err := c.fn.Call(in, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		var first value.Value = value.Nil
		if len(out) > 0 {
			first = out[0]
		}
		t, ok := first.(value.Table)
		if !ok {
			return nil, domain.NewFieldError(c.Name, domain.ErrTypeMismatch, "expected a table of results").WithValue(value.Describe(first))
		}
		res := make([]float64, t.Len())
		for i := range res {
			item := t.Get(value.Number(i + 1))
			n, ok := item.(value.Number)
			if !ok {
				return nil, domain.NewFieldError(fmt.Sprintf("%s[%d]", c.Name, i+1), domain.ErrTypeMismatch, "result is not a number").WithValue(value.Describe(item))
			}
			res[i] = float64(n)
		}
		return res, nil
	}

	out, err := c.fn.Call(in, c.Returns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	if len(out) < c.Returns {
		return nil, domain.NewFieldError(c.Name, domain.ErrArity, "expected %d results, got %d", c.Returns, len(out))
	}
	res := make([]float64, c.Returns)
	for i := range res {
		n, ok := out[i].(value.Number)
		if !ok {
			return nil, domain.NewFieldError(c.Name, domain.ErrTypeMismatch, "result %d is not a number", i+1).WithValue(value.Describe(out[i]))
		}
		res[i] = float64(n)
	}
	return res, nil
}
