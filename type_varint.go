package bincode

import (
	"math"

	"github.com/pkg/errors"
)

// Tiered varint. One byte holds 0..250 directly; 251..255 are sentinels
// announcing a fixed-width body:
//
//   251  2-byte body   (u16)
//   252  4-byte body   (u32)
//   253  8-byte body   (u64)
//   254  16-byte body  (u128)
//   255  32-byte body  (u256)
//
// Bodies use the configured endianness. The encoder always picks the
// smallest tier that holds the magnitude. Signed values are zigzag-mapped
// to unsigned first so small negatives stay small on the wire.

const (
	varintTier16  = 251
	varintTier32  = 252
	varintTier64  = 253
	varintTier128 = 254
	varintTier256 = 255
)

// ===== Zigzag =====

func zigzag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// ===== Encoding =====

func appendUvarint(out []byte, u uint64, e Endian) []byte {
	switch {
	case u < varintTier16:
		return append(out, byte(u))
	case u <= math.MaxUint16:
		out = append(out, varintTier16)
		return appendUintN(out, u, 2, e)
	case u <= math.MaxUint32:
		out = append(out, varintTier32)
		return appendUintN(out, u, 4, e)
	default:
		out = append(out, varintTier64)
		return appendUintN(out, u, 8, e)
	}
}

func appendSvarint(out []byte, v int64, e Endian) []byte {
	return appendUvarint(out, zigzag64(v), e)
}

func appendUvarint128(out []byte, u Uint128, e Endian) []byte {
	if u.Hi == 0 {
		return appendUvarint(out, u.Lo, e)
	}
	out = append(out, varintTier128)
	return appendUint128(out, u, e)
}

func appendUvarint256(out []byte, u Uint256, e Endian) []byte {
	if u.Hi.IsZero() {
		return appendUvarint128(out, u.Lo, e)
	}
	out = append(out, varintTier256)
	return appendUint256(out, u, e)
}

func sizeUvarint(u uint64) int {
	switch {
	case u < varintTier16:
		return 1
	case u <= math.MaxUint16:
		return 3
	case u <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

func sizeUvarint128(u Uint128) int {
	if u.Hi == 0 {
		return sizeUvarint(u.Lo)
	}
	return 17
}

func sizeUvarint256(u Uint256) int {
	if u.Hi.IsZero() {
		return sizeUvarint128(u.Lo)
	}
	return 33
}

// ===== Decoding =====

// decodeUvarint reads any tier into the widest type; callers narrow with
// the helpers below.

func decodeUvarint(buf []byte, index int, e Endian) (Uint256, int, error) {
	if index >= len(buf) {
		return Uint256{}, 0, errors.Wrap(ErrBufferUnderrun, "varint sentinel")
	}
	sentinel := buf[index]
	index++
	switch sentinel {
	case varintTier16:
		u, index, err := decodeUintN(buf, index, 2, e)
		return U256From64(u), index, err
	case varintTier32:
		u, index, err := decodeUintN(buf, index, 4, e)
		return U256From64(u), index, err
	case varintTier64:
		u, index, err := decodeUintN(buf, index, 8, e)
		return U256From64(u), index, err
	case varintTier128:
		u, index, err := decodeUint128(buf, index, e)
		return u.wide(), index, err
	case varintTier256:
		return decodeUint256(buf, index, e)
	default:
		return U256From64(uint64(sentinel)), index, nil
	}
}

// decodeUvarintN narrows to a destination of the given bit width.

func decodeUvarintN(buf []byte, index int, bits uint, e Endian) (uint64, int, error) {
	wide, index, err := decodeUvarint(buf, index, e)
	if err != nil {
		return 0, 0, err
	}
	u, ok := wide.Uint64()
	if !ok || (bits < 64 && u >= 1<<bits) {
		return 0, 0, errors.Wrapf(ErrIntegerCast, "uvarint into uint%d", bits)
	}
	return u, index, nil
}

func decodeSvarintN(buf []byte, index int, bits uint, e Endian) (int64, int, error) {
	wide, index, err := decodeUvarint(buf, index, e)
	if err != nil {
		return 0, 0, err
	}
	v, ok := wide.unzigzag().int64()
	if !ok || (bits < 64 && (v >= int64(1)<<(bits-1) || v < -(int64(1)<<(bits-1)))) {
		return 0, 0, errors.Wrapf(ErrIntegerCast, "svarint into int%d", bits)
	}
	return v, index, nil
}
