package layout

// Memory layout of the intrinsic slots.
const (
	// CallbackSlotSize is the size of a callback slot:
	// function handle (int64), nprm (int32), nret (int32), constant buffer handle (int64).
	CallbackSlotSize      = 24
	callbackFuncOffset    = 0
	callbackParamsOffset  = 8
	callbackReturnsOffset = 12
	callbackDataOffset    = 16

	// ReferenceSlotSize is the size of a reference slot holding one handle.
	ReferenceSlotSize = 8

	// PointerSize is the size reserved for pointer fields.
	PointerSize = 8

	// TimeItemSize is the size of a timing aggregate: count (int32), time (double).
	TimeItemSize = 16
)

// CallbackSlot is the decoded content of a callback slot.
type CallbackSlot struct {
	Func    int64
	Params  int32
	Returns int32
	Data    int64
}

// ReadCallbackSlot decodes the callback slot at off.
func ReadCallbackSlot(mem []byte, off int) (CallbackSlot, error) {
	var s CallbackSlot
	if err := check(mem, off, CallbackSlotSize); err != nil {
		return s, err
	}
	b := mem[off:]
	s.Func = int64(order.Uint64(b[callbackFuncOffset:]))
	s.Params = int32(order.Uint32(b[callbackParamsOffset:]))
	s.Returns = int32(order.Uint32(b[callbackReturnsOffset:]))
	s.Data = int64(order.Uint64(b[callbackDataOffset:]))
	return s, nil
}

// WriteCallbackSlot encodes s at off.
func WriteCallbackSlot(mem []byte, off int, s CallbackSlot) error {
	if err := check(mem, off, CallbackSlotSize); err != nil {
		return err
	}
	b := mem[off:]
	order.PutUint64(b[callbackFuncOffset:], uint64(s.Func))
	order.PutUint32(b[callbackParamsOffset:], uint32(s.Params))
	order.PutUint32(b[callbackReturnsOffset:], uint32(s.Returns))
	order.PutUint64(b[callbackDataOffset:], uint64(s.Data))
	return nil
}

// ReadHandle loads the int64 handle stored at off.
func ReadHandle(mem []byte, off int) (int64, error) {
	return Int(mem, off, ReferenceSlotSize)
}

// WriteHandle stores an int64 handle at off.
func WriteHandle(mem []byte, off int, h int64) error {
	return PutInt(mem, off, ReferenceSlotSize, h)
}
