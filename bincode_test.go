package bincode

import (
	"math"
	"math/bits"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- shared test shapes ---

type pair struct {
	A uint8
	B uint8
}

type mintAccount struct {
	MintAuthority   Option[[32]byte]
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority Option[[32]byte]
}

type pingMsg struct {
	Seq uint32
}

type dataMsg struct {
	Payload []byte
}

type frame struct {
	Kind uint8   `bincode:"tag"`
	Ping pingMsg `bincode:"variant=0"`
	Data dataMsg `bincode:"variant=1"`
}

type cardSuit uint8

const (
	suitClubs cardSuit = iota
	suitDiamonds
	suitHearts
	suitSpades
)

func (cardSuit) ValidEnum(tag uint64) bool { return tag <= uint64(suitSpades) }

var paramsGrid = []Params{
	Standard,
	Legacy,
	{Endian: BigEndian, IntEncoding: FixedInt},
	{Endian: LittleEndian, IntEncoding: VarInt},
	{Endian: BigEndian, IntEncoding: VarInt, IncludeFixedArrayLength: true},
}

// --- records ---

func TestRecordFieldOrder(t *testing.T) {
	type rec struct {
		A uint8
		B uint16
		C bool
	}
	v := rec{A: 7, B: 0x1234, C: true}

	buf, err := Marshal(v, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("07 34 12 01"), buf)

	buf, err = Marshal(v, Params{Endian: BigEndian})
	require.NoError(t, err)
	assert.Equal(t, SBytes("07 12 34 01"), buf)
}

func TestSkippedAndUnexportedFields(t *testing.T) {
	type rec struct {
		A      uint8
		Secret uint64 `bincode:"-"`
		hidden uint64 //nolint:unused // exercises the unexported-skip rule
		B      uint8
	}
	buf, err := Marshal(rec{A: 1, Secret: 99, B: 2}, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 02"), buf)
}

// The token-mint shape: two wide optionals around plain scalars comes out
// at exactly 82 bytes under Standard params.

func TestMintAccountScenario(t *testing.T) {
	var authority, freeze [32]byte
	for i := range authority {
		authority[i] = byte(i)
		freeze[i] = byte(31 - i)
	}
	mint := mintAccount{
		MintAuthority:   Some(authority),
		Supply:          1_000_000,
		Decimals:        9,
		IsInitialized:   true,
		FreezeAuthority: Some(freeze),
	}

	size, err := SizeOf(mint, Standard)
	require.NoError(t, err)
	assert.Equal(t, 82, size)

	buf, err := Marshal(mint, Standard)
	require.NoError(t, err)
	require.Equal(t, 82, len(buf))
	assert.Equal(t, SBytes("01 00 00 00"), buf[:4]) // wide optional discriminant

	var back mintAccount
	n, err := Unmarshal(buf, &back, Standard)
	require.NoError(t, err)
	assert.Equal(t, 82, n)
	assert.Equal(t, mint, back)

	// absence keeps the full payload slot
	mint.FreezeAuthority = None[[32]byte]()
	buf, err = Marshal(mint, Standard)
	require.NoError(t, err)
	assert.Equal(t, 82, len(buf))
	assert.Equal(t, SBytes("00 00 00 00"), buf[46:50])
}

// --- fixed arrays ---

func TestLegacyFixedArrayScenario(t *testing.T) {
	arr := [2]pair{{A: 10, B: 20}, {A: 30, B: 40}}

	buf, err := Marshal(arr, Legacy)
	require.NoError(t, err)
	assert.Equal(t, SBytes("02 00 00 00 00 00 00 00 0a 14 1e 28"), buf)

	var back [2]pair
	n, err := Unmarshal(buf, &back, Legacy)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, arr, back)

	// Standard drops the prefix
	buf, err = Marshal(arr, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("0a 14 1e 28"), buf)
}

func TestFixedArrayPrefixMismatch(t *testing.T) {
	var back [2]pair
	_, err := Unmarshal(SBytes("03 00 00 00 00 00 00 00 0a 14 1e 28"), &back, Legacy)
	assert.ErrorIs(t, err, ErrUnexpectedFixedArrayLen)
}

func TestFixedArrayPrefixIgnoresIntEncoding(t *testing.T) {
	// prefix stays a full 8 bytes even under varint params
	p := Params{IntEncoding: VarInt, IncludeFixedArrayLength: true}
	buf, err := Marshal([2]uint8{1, 2}, p)
	require.NoError(t, err)
	assert.Equal(t, SBytes("02 00 00 00 00 00 00 00 01 02"), buf)
}

// --- strings and slices ---

func TestStringRoundTrip(t *testing.T) {
	const hello = "hello world"
	helloHex := "68 65 6c 6c 6f 20 77 6f 72 6c 64"

	buf, err := Marshal(hello, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("0b 00 00 00 00 00 00 00 "+helloHex), buf)

	buf, err = Marshal(hello, Legacy)
	require.NoError(t, err)
	assert.Equal(t, SBytes("0b 00 00 00 00 00 00 00 "+helloHex), buf)

	buf, err = Marshal(hello, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, SBytes("0b "+helloHex), buf)

	for _, p := range paramsGrid {
		buf, err := Marshal(hello, p)
		require.NoError(t, err)
		var back string
		n, err := Unmarshal(buf, &back, p)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, hello, back)
	}
}

func TestSliceOfRecords(t *testing.T) {
	v := []pair{{1, 2}, {3, 4}, {5, 6}}
	buf, err := Marshal(v, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, SBytes("03 01 02 03 04 05 06"), buf)

	var back []pair
	_, err = Unmarshal(buf, &back, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

// Byte elements are still integers: under varint params a byte >= 251
// takes the u16 tier inside a sequence too, exactly as it does standalone.

func TestVarIntByteSequences(t *testing.T) {
	p := Params{IntEncoding: VarInt}

	buf, err := Marshal([]byte{250, 255}, p)
	require.NoError(t, err)
	assert.Equal(t, SBytes("02 fa fb ff 00"), buf)

	size, err := SizeOf([]byte{250, 255}, p)
	require.NoError(t, err)
	assert.Equal(t, len(buf), size)

	var back []byte
	n, err := Unmarshal(buf, &back, p)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, []byte{250, 255}, back)

	buf, err = Marshal([2]byte{250, 251}, p)
	require.NoError(t, err)
	assert.Equal(t, SBytes("fa fb fb 00"), buf)

	var backArr [2]byte
	_, err = Unmarshal(buf, &backArr, p)
	require.NoError(t, err)
	assert.Equal(t, [2]byte{250, 251}, backArr)

	buf, err = Marshal("\xfb", p)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 fb fb 00"), buf)

	var backStr string
	_, err = Unmarshal(buf, &backStr, p)
	require.NoError(t, err)
	assert.Equal(t, "\xfb", backStr)

	// fixed ints keep the raw fast path
	buf, err = Marshal([]byte{255}, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 00 00 00 00 00 00 00 ff"), buf)
}

func TestSliceLengthRunsPastBuffer(t *testing.T) {
	// claims 200 elements, supplies 2 bytes
	var back []uint32
	_, err := Unmarshal(SBytes("c8 aa bb"), &back, Params{IntEncoding: VarInt})
	assert.ErrorIs(t, err, ErrBufferUnderrun)
}

// --- optionals and boxes ---

func TestNativeOptional(t *testing.T) {
	var absent *uint32
	buf, err := Marshal(absent, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("00"), buf)

	present := uint32(5)
	buf, err = Marshal(&present, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 05 00 00 00"), buf)

	var back *uint32
	n, err := Unmarshal(buf, &back, Standard)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NotNil(t, back)
	assert.Equal(t, uint32(5), *back)

	_, err = Unmarshal(SBytes("02"), &back, Standard)
	assert.ErrorIs(t, err, ErrBadOptionalBoolean)
}

func TestBoxPointer(t *testing.T) {
	type rec struct {
		Inner *uint16 `bincode:"box"`
	}
	inner := uint16(1337)

	buf, err := Marshal(rec{Inner: &inner}, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("39 05"), buf) // no presence byte, pointee only

	var back rec
	_, err = Unmarshal(buf, &back, Standard)
	require.NoError(t, err)
	require.NotNil(t, back.Inner)
	assert.Equal(t, uint16(1337), *back.Inner)

	_, err = Marshal(rec{}, Standard)
	assert.ErrorIs(t, err, ErrNilBoxPointer)
	_, err = SizeOf(rec{}, Standard)
	assert.ErrorIs(t, err, ErrNilBoxPointer)
}

// --- unions ---

func TestUnionRoundTrip(t *testing.T) {
	ping := frame{Kind: 0, Ping: pingMsg{Seq: 7}}
	buf, err := Marshal(ping, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("00 07 00 00 00"), buf)

	data := frame{Kind: 1, Data: dataMsg{Payload: []byte{0xaa, 0xbb}}}
	buf, err = Marshal(data, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 02 aa bb"), buf)

	var back frame
	_, err = Unmarshal(buf, &back, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestUnionUnknownTag(t *testing.T) {
	_, err := Marshal(frame{Kind: 9}, Standard)
	assert.ErrorIs(t, err, ErrUnknownUnionTag)

	var back frame
	_, err = Unmarshal(SBytes("09 00 00 00 00"), &back, Standard)
	assert.ErrorIs(t, err, ErrUnknownUnionTag)
}

// --- enums ---

func TestEnumRoundTrip(t *testing.T) {
	buf, err := Marshal(suitHearts, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("02"), buf)

	var back cardSuit
	_, err = Unmarshal(buf, &back, Standard)
	require.NoError(t, err)
	assert.Equal(t, suitHearts, back)

	_, err = Unmarshal(SBytes("05"), &back, Standard)
	assert.ErrorIs(t, err, ErrUnknownEnumTag)
}

// --- integers ---

func TestUsizeIsizeAlwaysEightBytes(t *testing.T) {
	buf, err := Marshal(int(-5), Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("fb ff ff ff ff ff ff ff"), buf)

	buf, err = Marshal(uint(7), Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("07 00 00 00 00 00 00 00"), buf)

	var backI int
	_, err = Unmarshal(SBytes("fb ff ff ff ff ff ff ff"), &backI, Standard)
	require.NoError(t, err)
	assert.Equal(t, -5, backI)
}

// usize/isize travel as 64 bits on the wire; a value past the platform's
// int range is a cast error on a 32-bit build, never a silent truncation.

func TestPlatformIntRange(t *testing.T) {
	var u uint
	_, errU := Unmarshal(SBytes("ff ff ff ff ff ff ff ff"), &u, Standard)
	var i int
	_, errI := Unmarshal(SBytes("ff ff ff ff ff ff ff 7f"), &i, Standard)

	if bits.UintSize == 64 {
		require.NoError(t, errU)
		assert.Equal(t, uint64(math.MaxUint64), uint64(u))
		require.NoError(t, errI)
		assert.Equal(t, int64(math.MaxInt64), int64(i))
	} else {
		assert.ErrorIs(t, errU, ErrIntegerCast)
		assert.ErrorIs(t, errI, ErrIntegerCast)
	}
}

func TestVarIntParams(t *testing.T) {
	type rec struct {
		A uint16
		B int8
	}
	buf, err := Marshal(rec{A: 300, B: -4}, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, SBytes("fb 2c 01 07"), buf) // 300 via u16 tier, zigzag(-4)=7

	var back rec
	_, err = Unmarshal(buf, &back, Params{IntEncoding: VarInt})
	require.NoError(t, err)
	assert.Equal(t, rec{A: 300, B: -4}, back)
}

func TestWideIntRoundTrip(t *testing.T) {
	type rec struct {
		U Uint128
		I Int128
		V Uint256
		W Int256
	}
	v := rec{
		U: U128(0xdeadbeef, 0xcafe),
		I: I128From64(-42),
		V: U256(U128(1, 2), U128(3, 4)),
		W: I256From64(-1_000_000),
	}
	for _, p := range paramsGrid {
		buf, err := Marshal(v, p)
		require.NoError(t, err)
		var back rec
		n, err := Unmarshal(buf, &back, p)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, back)
	}
}

// Floats ignore the endian param; integers don't. Both in one record.

func TestFloatEndianQuirk(t *testing.T) {
	type rec struct {
		N uint32
		F float64
	}
	buf, err := Marshal(rec{N: 1, F: 12345.6789}, Params{Endian: BigEndian})
	require.NoError(t, err)
	assert.Equal(t, SBytes("00 00 00 01 a1 f8 31 e6 d6 1c c8 40"), buf)
}

// --- the round-trip law, broadly ---

func TestRoundTripGrid(t *testing.T) {
	one := uint8(1)
	values := []any{
		true,
		false,
		uint8(250),
		uint16(65535),
		uint32(1 << 30),
		uint64(1) << 40,
		int8(-3),
		int16(-300),
		int32(-1 << 20),
		int64(-1) << 40,
		float32(3.25),
		float64(-12345.6789),
		"hello world",
		"",
		[]byte{1, 2, 3},
		[]uint16{10, 2000, 65535},
		[4]byte{9, 8, 7, 6},
		[2]pair{{1, 2}, {3, 4}},
		&one,
		(*uint8)(nil),
		pair{A: 5, B: 6},
		Some(uint64(77)),
		None[uint64](),
		frame{Kind: 1, Data: dataMsg{Payload: []byte{0xff}}},
		suitSpades,
		U128(123, 456),
		I128From64(-789),
	}
	for _, p := range paramsGrid {
		for _, v := range values {
			buf, err := Marshal(v, p)
			require.NoError(t, err, "marshal %T under %+v", v, p)

			size, err := SizeOf(v, p)
			require.NoError(t, err)
			assert.Equal(t, len(buf), size, "size walk disagrees for %T under %+v", v, p)

			dest := reflect.New(reflect.TypeOf(v))
			n, err := Unmarshal(buf, dest.Interface(), p)
			require.NoError(t, err, "unmarshal %T under %+v", v, p)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, v, dest.Elem().Interface(), "round trip %T under %+v", v, p)
		}
	}
}

// --- wrappers ---

func TestMarshalTo(t *testing.T) {
	v := pair{A: 1, B: 2}

	dst := make([]byte, 2)
	n, err := MarshalTo(dst, v, Standard)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, SBytes("01 02"), dst)

	big := make([]byte, 16)
	n, err = MarshalTo(big, v, Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 02"), big[:n])

	_, err = MarshalTo(make([]byte, 1), v, Standard)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestAppendChains(t *testing.T) {
	buf, err := Append(nil, uint8(1), Standard)
	require.NoError(t, err)
	buf, err = Append(buf, uint8(2), Standard)
	require.NoError(t, err)
	assert.Equal(t, SBytes("01 02"), buf)
}

func TestUnmarshalDestMustBePointer(t *testing.T) {
	var v pair
	_, err := Unmarshal(SBytes("01 02"), v, Standard)
	assert.ErrorIs(t, err, ErrNotAPointer)

	_, err = Unmarshal(SBytes("01 02"), (*pair)(nil), Standard)
	assert.ErrorIs(t, err, ErrNotAPointer)
}

func TestUnsupportedShapes(t *testing.T) {
	_, err := Marshal(map[string]int{"a": 1}, Standard)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = SizeOf(complex(1, 2), Standard)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	var m map[string]int
	_, err = Unmarshal(SBytes("00"), &m, Standard)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

// A failure partway through a record leaves the earlier fields populated,
// allocations and all. Deliberate: matches the reference behavior.

func TestPartialDecodeKeepsEarlierFields(t *testing.T) {
	type rec struct {
		A *uint8
		B bool
	}
	var back rec
	_, err := Unmarshal(SBytes("01 07 02"), &back, Standard)
	assert.ErrorIs(t, err, ErrBadBoolean)
	require.NotNil(t, back.A)
	assert.Equal(t, uint8(7), *back.A)
}
