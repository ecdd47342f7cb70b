// Package uabin implements the OPC UA binary encoding (UA-Binary) for the
// built-in types and the service messages the server speaks.
//
// Reader and Writer accumulate the first error and turn every subsequent
// operation into a no-op, so decode/encode sequences read linearly and are
// checked once at the end via Err().
package uabin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortRead is returned when there are insufficient bytes to complete a read.
var ErrShortRead = errors.New("uabin: short read")

// ErrInvalidValue is returned when a decoded field violates the encoding rules.
var ErrInvalidValue = errors.New("uabin: invalid value")

// maxArrayLength bounds decoded array and string lengths. A hostile length
// prefix must not drive allocation beyond the message that carries it.
const maxArrayLength = 1 << 24

// Reader provides sequential reading of little-endian UA-Binary data with
// error accumulation. Once an error occurs, all subsequent reads become
// no-ops returning zero values.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a new Reader wrapping the given byte slice with position at 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// require checks that n bytes are available at the current position.
func (r *Reader) require(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortRead, n, r.pos, len(r.data)-r.pos)
		return false
	}
	return true
}

// SetError forces the reader into the failed state. Used by decoders that
// detect semantic violations beyond short reads.
func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() uint8 {
	if !r.require(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

// ReadBool reads a single-byte boolean (any non-zero value is true).
func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() uint16 {
	if !r.require(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() uint32 {
	if !r.require(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() uint64 {
	if !r.require(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

// ReadInt8 reads a signed byte.
func (r *Reader) ReadInt8() int8 { return int8(r.ReadUint8()) }

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() int16 { return int16(r.ReadUint16()) }

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

// ReadFloat32 reads a little-endian IEEE 754 single.
func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUint32()) }

// ReadFloat64 reads a little-endian IEEE 754 double.
func (r *Reader) ReadFloat64() float64 { return math.Float64frombits(r.ReadUint64()) }

// ReadBytes reads n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) []byte {
	if !r.require(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b
}

// ReadString reads an Int32-length-prefixed UTF-8 string. Length -1 is the
// null string, returned as "".
func (r *Reader) ReadString() string {
	length := r.ReadInt32()
	if r.err != nil || length <= 0 {
		return ""
	}
	if length > maxArrayLength {
		r.SetError(fmt.Errorf("%w: string length %d", ErrInvalidValue, length))
		return ""
	}
	b := r.ReadBytes(int(length))
	return string(b)
}

// ReadByteString reads an Int32-length-prefixed bytestring. Length -1 is
// the null bytestring, returned as nil.
func (r *Reader) ReadByteString() []byte {
	length := r.ReadInt32()
	if r.err != nil || length < 0 {
		return nil
	}
	if length > maxArrayLength {
		r.SetError(fmt.Errorf("%w: bytestring length %d", ErrInvalidValue, length))
		return nil
	}
	return r.ReadBytes(int(length))
}

// ReadArrayLength reads an array length prefix and validates it.
// Returns -1 for null arrays.
func (r *Reader) ReadArrayLength() int {
	length := r.ReadInt32()
	if r.err != nil {
		return -1
	}
	if length < -1 || length > maxArrayLength {
		r.SetError(fmt.Errorf("%w: array length %d", ErrInvalidValue, length))
		return -1
	}
	return int(length)
}

// Skip advances the position by n bytes without reading.
func (r *Reader) Skip(n int) {
	if !r.require(n) {
		return
	}
	r.pos += n
}

// Position returns the current read offset.
func (r *Reader) Position() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }
