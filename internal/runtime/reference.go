package runtime

import (
	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/handle"
	"github.com/aretw0/irep/pkg/layout"
	"github.com/aretw0/irep/pkg/value"
)

// readReference captures v without interpreting it. The handle previously held
// by the slot is released; nil clears the slot.
func (r *reader) readReference(v value.Value) {
	off := r.ctx.offset
	old, err := layout.ReadHandle(r.mem, off)
	if err != nil {
		r.e.record(r.report, codecError(r.ctx.String(), err))
		return
	}

	h := handle.None
	if !value.IsNil(v) {
		h, err = r.e.references.Retain(v)
		if err != nil {
			r.fail(domain.ErrAllocation, "cannot retain reference: %v", err)
			return
		}
	}
	if err := layout.WriteHandle(r.mem, off, int64(h)); err != nil {
		r.e.references.Release(h)
		r.e.record(r.report, codecError(r.ctx.String(), err))
		return
	}
	r.e.references.Release(handle.Handle(old))
	r.assigned(v)
}
