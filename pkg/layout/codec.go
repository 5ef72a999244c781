package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRange is returned when a value does not fit its slot.
	ErrRange = errors.New("value out of range")
	// ErrBounds is returned when a slot lies outside its memory region.
	ErrBounds = errors.New("slot outside memory region")
	// ErrSize is returned for slot sizes the codec cannot represent.
	ErrSize = errors.New("unsupported slot size")
)

var order = binary.NativeEndian

func check(mem []byte, off, size int) error {
	if off < 0 || size < 0 || off+size > len(mem) {
		return fmt.Errorf("%w: [%d, %d) of %d bytes", ErrBounds, off, off+size, len(mem))
	}
	return nil
}

// PutInt stores v as a signed integer of size bytes (1, 2, 4 or 8).
func PutInt(mem []byte, off, size int, v int64) error {
	if err := check(mem, off, size); err != nil {
		return err
	}
	b := mem[off : off+size]
	switch size {
	case 1:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return fmt.Errorf("%w: %d does not fit 8 bits", ErrRange, v)
		}
		b[0] = byte(int8(v))
	case 2:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return fmt.Errorf("%w: %d does not fit 16 bits", ErrRange, v)
		}
		order.PutUint16(b, uint16(int16(v)))
	case 4:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%w: %d does not fit 32 bits", ErrRange, v)
		}
		order.PutUint32(b, uint32(int32(v)))
	case 8:
		order.PutUint64(b, uint64(v))
	default:
		return fmt.Errorf("%w: integer of %d bytes", ErrSize, size)
	}
	return nil
}

// Int loads a signed integer of size bytes.
func Int(mem []byte, off, size int) (int64, error) {
	if err := check(mem, off, size); err != nil {
		return 0, err
	}
	b := mem[off : off+size]
	switch size {
	case 1:
		return int64(int8(b[0])), nil
	case 2:
		return int64(int16(order.Uint16(b))), nil
	case 4:
		return int64(int32(order.Uint32(b))), nil
	case 8:
		return int64(order.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: integer of %d bytes", ErrSize, size)
	}
}

// PutFloat stores f as a 4 or 8 byte IEEE 754 value.
func PutFloat(mem []byte, off, size int, f float64) error {
	if err := check(mem, off, size); err != nil {
		return err
	}
	b := mem[off : off+size]
	switch size {
	case 4:
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return fmt.Errorf("%w: %g does not fit single precision", ErrRange, f)
		}
		order.PutUint32(b, math.Float32bits(float32(f)))
	case 8:
		order.PutUint64(b, math.Float64bits(f))
	default:
		return fmt.Errorf("%w: float of %d bytes", ErrSize, size)
	}
	return nil
}

// Float loads a 4 or 8 byte IEEE 754 value.
func Float(mem []byte, off, size int) (float64, error) {
	if err := check(mem, off, size); err != nil {
		return 0, err
	}
	b := mem[off : off+size]
	switch size {
	case 4:
		return float64(math.Float32frombits(order.Uint32(b))), nil
	case 8:
		return math.Float64frombits(order.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: float of %d bytes", ErrSize, size)
	}
}

// PutBool stores b as an integer 1 or 0 spanning size bytes.
func PutBool(mem []byte, off, size int, v bool) error {
	if err := check(mem, off, size); err != nil {
		return err
	}
	clear(mem[off : off+size])
	if v {
		if size == 1 {
			mem[off] = 1
			return nil
		}
		return PutInt(mem, off, size, 1)
	}
	return nil
}

// Bool loads a boolean: any non-zero byte is true.
func Bool(mem []byte, off, size int) (bool, error) {
	if err := check(mem, off, size); err != nil {
		return false, err
	}
	for _, c := range mem[off : off+size] {
		if c != 0 {
			return true, nil
		}
	}
	return false, nil
}

// PutString stores s into a slot of maxLen bytes, NUL padded.
// s may use at most maxLen-1 bytes so a terminator always fits.
func PutString(mem []byte, off, maxLen int, s string) error {
	if err := check(mem, off, maxLen); err != nil {
		return err
	}
	if len(s) > maxLen-1 {
		return fmt.Errorf("%w: length %d exceeds %d", ErrRange, len(s), maxLen-1)
	}
	b := mem[off : off+maxLen]
	n := copy(b, s)
	clear(b[n:])
	return nil
}

// String loads a string slot up to its terminator, dropping trailing blanks.
func String(mem []byte, off, maxLen int) (string, error) {
	if err := check(mem, off, maxLen); err != nil {
		return "", err
	}
	b := mem[off : off+maxLen]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b[:NonBlankLen(b)]), nil
}

// NonBlankLen returns the length of b without trailing spaces and NUL bytes.
func NonBlankLen(b []byte) int {
	n := len(b)
	for n > 0 && (b[n-1] == ' ' || b[n-1] == 0) {
		n--
	}
	return n
}
