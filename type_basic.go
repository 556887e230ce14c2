package bincode

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ===== Encoding =====

// Encoders append to the given []byte and return it. So it's fast because
// pointer, and go can do its realloc trick only when needed.

func appendBool(out []byte, value bool) []byte {
	if value {
		return append(out, 0x01)
	}
	return append(out, 0x00)
}

// appendUintN writes value at an exact byte width. Signed values come
// through here too, already bit-cast to uint64 (two's complement survives
// the round trip unchanged).

func appendUintN(out []byte, value uint64, width int, e Endian) []byte {
	var b [8]byte
	switch width {
	case 1:
		return append(out, byte(value))
	case 2:
		e.order().PutUint16(b[:2], uint16(value))
	case 4:
		e.order().PutUint32(b[:4], uint32(value))
	default:
		e.order().PutUint64(b[:8], value)
		width = 8
	}
	return append(out, b[:width]...)
}

// Policy: floats always travel little-endian, whatever Params.Endian says.
// The reference stream writes them as the raw in-memory pattern and every
// producer of that stream is little-endian. Ints respect Params, floats
// don't.

func appendFloat32(out []byte, value float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(value))
	return append(out, b[:]...)
}

func appendFloat64(out []byte, value float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(value))
	return append(out, b[:]...)
}

// ===== Decoding =====

// Decoders take (buf, index) and give back (value, new index, error).
// Policy: running off the end of buf is an error, not a panic.

func decodeBool(buf []byte, index int) (bool, int, error) {
	if index >= len(buf) {
		return false, 0, errors.Wrap(ErrBufferUnderrun, "bool")
	}
	switch buf[index] {
	case 0x00:
		return false, index + 1, nil
	case 0x01:
		return true, index + 1, nil
	}
	return false, 0, errors.Wrapf(ErrBadBoolean, "byte 0x%02x", buf[index])
}

func decodeUintN(buf []byte, index int, width int, e Endian) (uint64, int, error) {
	if len(buf)-index < width {
		return 0, 0, errors.Wrapf(ErrBufferUnderrun, "%d-byte int", width)
	}
	var value uint64
	switch width {
	case 1:
		value = uint64(buf[index])
	case 2:
		value = uint64(e.order().Uint16(buf[index:]))
	case 4:
		value = uint64(e.order().Uint32(buf[index:]))
	default:
		value = e.order().Uint64(buf[index:])
		width = 8
	}
	return value, index + width, nil
}

func decodeFloat32(buf []byte, index int) (float32, int, error) {
	if len(buf)-index < 4 {
		return 0, 0, errors.Wrap(ErrBufferUnderrun, "float32")
	}
	bits := binary.LittleEndian.Uint32(buf[index:])
	return math.Float32frombits(bits), index + 4, nil
}

func decodeFloat64(buf []byte, index int) (float64, int, error) {
	if len(buf)-index < 8 {
		return 0, 0, errors.Wrap(ErrBufferUnderrun, "float64")
	}
	bits := binary.LittleEndian.Uint64(buf[index:])
	return math.Float64frombits(bits), index + 8, nil
}
