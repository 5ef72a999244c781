package runtime

import (
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/layout"
	"github.com/aretw0/irep/pkg/value"
)

// reader is the state of one Read call.
type reader struct {
	e      *Engine
	table  string
	mem    []byte
	ctx    pathContext
	report *domain.Report
	depth  int
}

func (r *reader) fail(kind error, format string, args ...any) {
	r.e.record(r.report, domain.NewFieldError(r.ctx.String(), kind, format, args...))
}

// failValue is fail with the offending value attached.
func (r *reader) failValue(v value.Value, kind error, format string, args ...any) {
	err := domain.NewFieldError(r.ctx.String(), kind, format, args...).WithValue(value.Describe(v))
	r.e.record(r.report, err)
}

func (r *reader) assigned(v value.Value) {
	r.report.Assigned++
	if r.e.trace {
		r.e.logger.Debug("assign", "path", r.ctx.String(), "value", value.Describe(v))
	}
}

// read stores v into the slot described by f at the current offset. indexed
// tells whether the array dimension of f has already been selected.
func (r *reader) read(v value.Value, f index.FieldDescriptor, indexed bool) {
	if v == nil {
		v = value.Nil
	}
	switch f.Type {
	case index.Callback:
		r.readCallback(v, f)
		return
	case index.Reference:
		r.readReference(v)
		return
	case index.Pointer:
		r.failValue(v, domain.ErrTypeMismatch, "pointer fields cannot be assigned")
		return
	}

	array := !f.IsScalar() && !indexed
	if v.Kind() != value.KindTable {
		switch {
		case array:
			r.failValue(v, domain.ErrTypeMismatch, "array %s expects a table", f.Bounds())
		case f.Type == index.Table:
			r.failValue(v, domain.ErrTypeMismatch, "aggregate expects a table")
		default:
			r.readScalar(v, f)
		}
		return
	}

	tbl, ok := v.(value.Table)
	if !ok || (!array && f.Type != index.Table) {
		r.failValue(v, domain.ErrTypeMismatch, "%s field expects a scalar", f.Type)
		return
	}
	if r.depth >= r.e.maxDepth {
		r.fail(domain.ErrStack, "nesting exceeds %d levels", r.e.maxDepth)
		return
	}
	r.depth++
	defer func() { r.depth-- }()

	for k, item := range tbl.All() {
		switch key := k.(type) {
		case value.String:
			r.readField(string(key), item, f, array)
		case value.Number:
			r.readElement(key, item, f, array)
		default:
			m := r.ctx.key(value.Describe(k))
			r.fail(domain.ErrPath, "unsupported key of kind %s", k.Kind())
			r.ctx.restore(m)
		}
	}
}

func (r *reader) readField(name string, item value.Value, f index.FieldDescriptor, array bool) {
	if array {
		m := r.ctx.field(name, 0)
		r.fail(domain.ErrLookup, "array has no field %q", name)
		r.ctx.restore(m)
		return
	}
	child, ok := r.e.index.Field(f.Child, name)
	if !ok {
		m := r.ctx.field(name, 0)
		r.fail(domain.ErrLookup, "no field %q", name)
		r.ctx.restore(m)
		return
	}
	m := r.ctx.field(name, child.Offset)
	r.read(item, child, false)
	r.ctx.restore(m)
}

func (r *reader) readElement(key value.Number, item value.Value, f index.FieldDescriptor, array bool) {
	i, ok := key.Int()
	if !ok {
		m := r.ctx.key(value.FormatKey(key))
		r.fail(domain.ErrPath, "index is not an integer")
		r.ctx.restore(m)
		return
	}
	if !array {
		m := r.ctx.key(value.FormatKey(key))
		r.fail(domain.ErrPath, "not an array")
		r.ctx.restore(m)
		return
	}
	if !f.InBounds(int(i)) {
		m := r.ctx.key(value.FormatKey(key))
		r.fail(domain.ErrPath, "index %d outside %s", i, f.Bounds())
		r.ctx.restore(m)
		return
	}
	m := r.ctx.index(int(i), f.ElementOffset(int(i)))
	r.read(item, f, true)
	r.ctx.restore(m)
}

// readScalar converts a leaf value into its slot. Memory is only touched when
// the value is valid.
func (r *reader) readScalar(v value.Value, f index.FieldDescriptor) {
	off := r.ctx.offset
	var err error
	switch f.Type {
	case index.Int:
		n, ok := v.(value.Number)
		if !ok {
			r.failValue(v, domain.ErrTypeMismatch, "expected a number")
			return
		}
		i, whole := n.Int()
		if !whole {
			r.failValue(v, domain.ErrTypeMismatch, "expected an integer")
			return
		}
		err = layout.PutInt(r.mem, off, f.Size, i)
	case index.Double:
		n, ok := v.(value.Number)
		if !ok {
			r.failValue(v, domain.ErrTypeMismatch, "expected a number")
			return
		}
		err = layout.PutFloat(r.mem, off, f.Size, float64(n))
	case index.Bool:
		b, ok := v.(value.Bool)
		if !ok {
			r.failValue(v, domain.ErrTypeMismatch, "expected a boolean")
			return
		}
		err = layout.PutBool(r.mem, off, f.Size, bool(b))
	case index.String:
		s, ok := v.(value.String)
		if !ok {
			r.failValue(v, domain.ErrTypeMismatch, "expected a string")
			return
		}
		if len(s) > f.MaxLen-1 {
			r.fail(domain.ErrOverflow, "string of length %d exceeds %d", len(s), f.MaxLen-1)
			return
		}
		err = layout.PutString(r.mem, off, f.MaxLen, string(s))
	default:
		r.failValue(v, domain.ErrTypeMismatch, "%s field cannot hold this value", f.Type)
		return
	}
	if err != nil {
		fe := codecError(r.ctx.String(), err).WithValue(value.Describe(v))
		r.e.record(r.report, fe)
		return
	}
	r.assigned(v)
}
