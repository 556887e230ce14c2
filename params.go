package bincode

import (
	"encoding/binary"
)

// Params select how integers and fixed arrays travel on the wire.
// Pass the same Params to the write and the matching read, always.
// Params are plain values, cheap to copy, never mutated by the codec.

type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

type IntEncoding uint8

const (
	// FixedInt writes integers at their full declared width.
	FixedInt IntEncoding = iota
	// VarInt writes integers with the tiered varint scheme, zigzag-mapped
	// first when signed.
	VarInt
)

func (ie IntEncoding) String() string {
	if ie == VarInt {
		return "varint"
	}
	return "fixed"
}

type Params struct {
	Endian      Endian
	IntEncoding IntEncoding

	// IncludeFixedArrayLength prefixes every fixed-size array with its
	// length as an 8-byte unsigned integer. The prefix ignores IntEncoding.
	IncludeFixedArrayLength bool
}

// The two stock parameter sets. The zero Params value equals Standard.
var (
	Legacy   = Params{Endian: LittleEndian, IntEncoding: FixedInt, IncludeFixedArrayLength: true}
	Standard = Params{Endian: LittleEndian, IntEncoding: FixedInt, IncludeFixedArrayLength: false}
)
