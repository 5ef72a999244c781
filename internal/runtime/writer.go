package runtime

import (
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/handle"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/layout"
	"github.com/aretw0/irep/pkg/value"
)

// writer is the state of one Write or Snapshot call.
type writer struct {
	e      *Engine
	table  string
	mem    []byte
	ctx    pathContext
	report *domain.Report
}

func (w *writer) fail(err *domain.FieldError) value.Value {
	w.e.record(w.report, err)
	return value.Nil
}

func (w *writer) emit(v value.Value) value.Value {
	w.report.Assigned++
	if w.e.trace {
		w.e.logger.Debug("emit", "path", w.ctx.String(), "value", value.Describe(v))
	}
	return v
}

// build converts the slot described by f at the current offset into a dynamic
// value. Unassigned callback and reference slots and pointer fields yield Nil.
func (w *writer) build(f index.FieldDescriptor, indexed bool) value.Value {
	if !f.IsScalar() && !indexed {
		arr := value.NewMap()
		for i := f.Lower; i <= f.Upper; i++ {
			m := w.ctx.index(i, f.ElementOffset(i))
			arr.Set(value.Number(i), w.build(f, true))
			w.ctx.restore(m)
		}
		return arr
	}

	off := w.ctx.offset
	switch f.Type {
	case index.Table:
		tbl := value.NewMap()
		for _, child := range w.e.index.Fields(f.Child) {
			m := w.ctx.field(child.Name, child.Offset)
			tbl.SetField(child.Name, w.build(child, false))
			w.ctx.restore(m)
		}
		return tbl
	case index.Int:
		i, err := layout.Int(w.mem, off, f.Size)
		if err != nil {
			return w.fail(codecError(w.ctx.String(), err))
		}
		return w.emit(value.Number(i))
	case index.Double:
		d, err := layout.Float(w.mem, off, f.Size)
		if err != nil {
			return w.fail(codecError(w.ctx.String(), err))
		}
		return w.emit(value.Number(d))
	case index.Bool:
		b, err := layout.Bool(w.mem, off, f.Size)
		if err != nil {
			return w.fail(codecError(w.ctx.String(), err))
		}
		return w.emit(value.Bool(b))
	case index.String:
		s, err := layout.String(w.mem, off, f.MaxLen)
		if err != nil {
			return w.fail(codecError(w.ctx.String(), err))
		}
		return w.emit(value.String(s))
	case index.Callback:
		return w.callback(off)
	case index.Reference:
		return w.reference(off)
	default:
		return value.Nil
	}
}

// callback reconstructs a callback slot as its function, or as its constants:
// a single number when there is one, a sequence otherwise.
func (w *writer) callback(off int) value.Value {
	slot, err := layout.ReadCallbackSlot(w.mem, off)
	if err != nil {
		return w.fail(codecError(w.ctx.String(), err))
	}
	switch {
	case slot.Func == ConstantFunc:
		consts, ok := w.e.buffers.Resolve(handle.Handle(slot.Data))
		if !ok {
			return value.Nil
		}
		if len(consts) == 1 {
			return w.emit(value.Number(consts[0]))
		}
		seq := value.NewMap()
		for _, c := range consts {
			seq.Append(value.Number(c))
		}
		return w.emit(seq)
	case slot.Func > 0:
		fn, ok := w.e.functions.Resolve(handle.Handle(slot.Func))
		if !ok {
			return value.Nil
		}
		return w.emit(fn)
	default:
		return value.Nil
	}
}

func (w *writer) reference(off int) value.Value {
	raw, err := layout.ReadHandle(w.mem, off)
	if err != nil {
		return w.fail(codecError(w.ctx.String(), err))
	}
	v, ok := w.e.references.Resolve(handle.Handle(raw))
	if !ok {
		return value.Nil
	}
	return w.emit(v)
}
