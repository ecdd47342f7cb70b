package uabin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer provides sequential writing of little-endian UA-Binary data with
// append-based growth and error accumulation.
type Writer struct {
	buf []byte
	err error
}

// NewWriter creates a new Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: make([]byte, 0, capacity),
	}
}

// SetError forces the writer into the failed state.
func (w *Writer) SetError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v)
}

// WriteBool appends a single-byte boolean.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteUint16 appends a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteInt8 appends a signed byte.
func (w *Writer) WriteInt8(v int8) { w.WriteUint8(uint8(v)) }

// WriteInt16 appends a little-endian int16.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteInt64 appends a little-endian int64.
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 appends a little-endian IEEE 754 single.
func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 appends a little-endian IEEE 754 double.
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, data...)
}

// WriteString appends an Int32-length-prefixed UTF-8 string. The empty
// string is encoded as null (-1), matching how the server treats absent
// strings.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(s)))
	w.WriteBytes([]byte(s))
}

// WriteByteString appends an Int32-length-prefixed bytestring; nil encodes
// as null (-1).
func (w *Writer) WriteByteString(b []byte) {
	if b == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.WriteBytes(b)
}

// WriteArrayLength appends an array length prefix; -1 encodes a null array.
func (w *Writer) WriteArrayLength(n int) {
	if n > maxArrayLength {
		w.SetError(fmt.Errorf("%w: array length %d", ErrInvalidValue, n))
		return
	}
	w.WriteInt32(int32(n))
}

// WriteAt overwrites bytes at the specified offset. Used for backpatching
// size fields after the body length is known.
func (w *Writer) WriteAt(offset int, data []byte) {
	if w.err != nil {
		return
	}
	if offset+len(data) > len(w.buf) {
		w.err = fmt.Errorf("uabin: WriteAt out of bounds: offset %d + %d > %d", offset, len(data), len(w.buf))
		return
	}
	copy(w.buf[offset:], data)
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the current length of the buffer.
func (w *Writer) Len() int { return len(w.buf) }

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error { return w.err }
