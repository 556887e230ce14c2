package bincode

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Go stops at 64-bit integers, the wire format doesn't. The 128 and 256 bit
// widths are explicit limb types: Lo is the least significant limb, signed
// flavours are the same limbs read as two's complement.

type Uint128 struct{ Lo, Hi uint64 }

type Int128 Uint128

type Uint256 struct{ Lo, Hi Uint128 }

type Int256 Uint256

func U128(lo, hi uint64) Uint128 { return Uint128{Lo: lo, Hi: hi} }

func U128From64(x uint64) Uint128 { return Uint128{Lo: x} }

func I128From64(x int64) Int128 {
	return Int128{Lo: uint64(x), Hi: uint64(x >> 63)} // sign-extend into Hi
}

func U256(lo, hi Uint128) Uint256 { return Uint256{Lo: lo, Hi: hi} }

func U256From64(x uint64) Uint256 { return Uint256{Lo: U128From64(x)} }

func I256From64(x int64) Int256 {
	s := uint64(x >> 63)
	return Int256{Lo: Uint128{Lo: uint64(x), Hi: s}, Hi: Uint128{Lo: s, Hi: s}}
}

func (u Uint128) IsZero() bool { return u.Lo == 0 && u.Hi == 0 }

// Uint64 narrows, reporting whether the value actually fits.
func (u Uint128) Uint64() (uint64, bool) { return u.Lo, u.Hi == 0 }

func (u Uint256) IsZero() bool { return u.Lo.IsZero() && u.Hi.IsZero() }

func (u Uint256) Uint64() (uint64, bool) { return u.Lo.Lo, u.Hi.IsZero() && u.Lo.Hi == 0 }

func (u Uint256) Uint128() (Uint128, bool) { return u.Lo, u.Hi.IsZero() }

func (u Uint128) wide() Uint256 { return Uint256{Lo: u} }

func (i Int256) int64() (int64, bool) {
	s := uint64(int64(i.Lo.Lo) >> 63)
	ok := i.Lo.Hi == s && i.Hi.Lo == s && i.Hi.Hi == s
	return int64(i.Lo.Lo), ok
}

func (i Int256) int128() (Int128, bool) {
	s := uint64(int64(i.Lo.Hi) >> 63)
	ok := i.Hi.Lo == s && i.Hi.Hi == s
	return Int128(i.Lo), ok
}

// ===== Fixed-width bytes =====

func appendUint128(out []byte, u Uint128, e Endian) []byte {
	var b [16]byte
	if e == BigEndian {
		binary.BigEndian.PutUint64(b[0:8], u.Hi)
		binary.BigEndian.PutUint64(b[8:16], u.Lo)
	} else {
		binary.LittleEndian.PutUint64(b[0:8], u.Lo)
		binary.LittleEndian.PutUint64(b[8:16], u.Hi)
	}
	return append(out, b[:]...)
}

func decodeUint128(buf []byte, index int, e Endian) (Uint128, int, error) {
	if len(buf)-index < 16 {
		return Uint128{}, 0, errors.Wrap(ErrBufferUnderrun, "16-byte int")
	}
	var u Uint128
	if e == BigEndian {
		u.Hi = binary.BigEndian.Uint64(buf[index:])
		u.Lo = binary.BigEndian.Uint64(buf[index+8:])
	} else {
		u.Lo = binary.LittleEndian.Uint64(buf[index:])
		u.Hi = binary.LittleEndian.Uint64(buf[index+8:])
	}
	return u, index + 16, nil
}

func appendUint256(out []byte, u Uint256, e Endian) []byte {
	if e == BigEndian {
		out = appendUint128(out, u.Hi, e)
		return appendUint128(out, u.Lo, e)
	}
	out = appendUint128(out, u.Lo, e)
	return appendUint128(out, u.Hi, e)
}

func decodeUint256(buf []byte, index int, e Endian) (Uint256, int, error) {
	if len(buf)-index < 32 {
		return Uint256{}, 0, errors.Wrap(ErrBufferUnderrun, "32-byte int")
	}
	var u Uint256
	var err error
	if e == BigEndian {
		u.Hi, index, err = decodeUint128(buf, index, e)
		if err != nil {
			return Uint256{}, 0, err
		}
		u.Lo, index, err = decodeUint128(buf, index, e)
	} else {
		u.Lo, index, err = decodeUint128(buf, index, e)
		if err != nil {
			return Uint256{}, 0, err
		}
		u.Hi, index, err = decodeUint128(buf, index, e)
	}
	if err != nil {
		return Uint256{}, 0, err
	}
	return u, index, nil
}

// ===== Zigzag over limbs =====

// Same (v<<1)^(v>>bits-1) as the 64-bit one, spelled out across limbs.

func (i Int128) zigzag() Uint128 {
	s0 := i.Lo << 1
	s1 := i.Hi<<1 | i.Lo>>63
	m := uint64(int64(i.Hi) >> 63)
	return Uint128{Lo: s0 ^ m, Hi: s1 ^ m}
}

func (u Uint128) unzigzag() Int128 {
	s0 := u.Lo>>1 | u.Hi<<63
	s1 := u.Hi >> 1
	var m uint64
	if u.Lo&1 == 1 {
		m = ^uint64(0)
	}
	return Int128{Lo: s0 ^ m, Hi: s1 ^ m}
}

func (i Int256) zigzag() Uint256 {
	l0, l1, l2, l3 := i.Lo.Lo, i.Lo.Hi, i.Hi.Lo, i.Hi.Hi
	s0 := l0 << 1
	s1 := l1<<1 | l0>>63
	s2 := l2<<1 | l1>>63
	s3 := l3<<1 | l2>>63
	m := uint64(int64(l3) >> 63)
	return Uint256{Lo: Uint128{Lo: s0 ^ m, Hi: s1 ^ m}, Hi: Uint128{Lo: s2 ^ m, Hi: s3 ^ m}}
}

func (u Uint256) unzigzag() Int256 {
	l0, l1, l2, l3 := u.Lo.Lo, u.Lo.Hi, u.Hi.Lo, u.Hi.Hi
	s0 := l0>>1 | l1<<63
	s1 := l1>>1 | l2<<63
	s2 := l2>>1 | l3<<63
	s3 := l3 >> 1
	var m uint64
	if l0&1 == 1 {
		m = ^uint64(0)
	}
	return Int256{Lo: Uint128{Lo: s0 ^ m, Hi: s1 ^ m}, Hi: Uint128{Lo: s2 ^ m, Hi: s3 ^ m}}
}
