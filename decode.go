package bincode

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// decodeLength reads a sequence length (a usize on the wire) and narrows
// it to a platform int.
func decodeLength(buf []byte, index int, p Params) (int, int, error) {
	var u uint64
	var err error
	if p.IntEncoding == VarInt {
		u, index, err = decodeUvarintN(buf, index, 64, p.Endian)
	} else {
		u, index, err = decodeUintN(buf, index, 8, p.Endian)
	}
	if err != nil {
		return 0, 0, errors.Wrap(err, "length")
	}
	if u > uint64(math.MaxInt) {
		return 0, 0, errors.Wrapf(ErrDataTooLarge, "length %d", u)
	}
	return int(u), index, nil
}

// decodeValue is the decoder's recursive walk, the exact mirror of
// appendValue. v must be settable; index is where in buf to start, the new
// index comes back. Allocations made for pointers, slices and strings are
// owned by the destination; see Release.
func decodeValue(buf []byte, index int, v reflect.Value, p Params) (int, error) {
	switch v.Type() {
	case uint128Type, int128Type, uint256Type, int256Type:
		return decodeWideInt(buf, index, v, p)
	}

	switch v.Kind() {
	case reflect.Bool:
		b, index, err := decodeBool(buf, index)
		if err != nil {
			return 0, err
		}
		v.SetBool(b)
		return index, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		width := intWidth(v.Kind())
		var i int64
		var err error
		if p.IntEncoding == VarInt {
			i, index, err = decodeSvarintN(buf, index, uint(width)*8, p.Endian)
		} else {
			var u uint64
			u, index, err = decodeUintN(buf, index, width, p.Endian)
			i = signExtend(u, width)
		}
		if err != nil {
			return 0, err
		}
		// only reachable for Go int on a 32-bit build
		if v.OverflowInt(i) {
			return 0, errors.Wrapf(ErrIntegerCast, "%d into %v", i, v.Type())
		}
		v.SetInt(i)
		return index, checkEnum(v, uint64(i))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		width := intWidth(v.Kind())
		var u uint64
		var err error
		if p.IntEncoding == VarInt {
			u, index, err = decodeUvarintN(buf, index, uint(width)*8, p.Endian)
		} else {
			u, index, err = decodeUintN(buf, index, width, p.Endian)
		}
		if err != nil {
			return 0, err
		}
		if v.OverflowUint(u) {
			return 0, errors.Wrapf(ErrIntegerCast, "%d into %v", u, v.Type())
		}
		v.SetUint(u)
		return index, checkEnum(v, u)

	case reflect.Float32:
		f, index, err := decodeFloat32(buf, index)
		if err != nil {
			return 0, err
		}
		v.SetFloat(float64(f))
		return index, nil

	case reflect.Float64:
		f, index, err := decodeFloat64(buf, index)
		if err != nil {
			return 0, err
		}
		v.SetFloat(f)
		return index, nil

	case reflect.String:
		n, index, err := decodeLength(buf, index, p)
		if err != nil {
			return 0, err
		}
		if n > len(buf)-index {
			return 0, errors.Wrap(ErrBufferUnderrun, "string bytes")
		}
		if p.IntEncoding == VarInt {
			b := make([]byte, n)
			for i := range b {
				var u uint64
				u, index, err = decodeUvarintN(buf, index, 8, p.Endian)
				if err != nil {
					return 0, errors.Wrapf(err, "string byte %d", i)
				}
				b[i] = byte(u)
			}
			v.SetString(string(b))
			return index, nil
		}
		v.SetString(string(buf[index : index+n]))
		return index + n, nil

	case reflect.Slice:
		return decodeSlice(buf, index, v, p)

	case reflect.Array:
		return decodeArray(buf, index, v, p)

	case reflect.Ptr:
		if index >= len(buf) {
			return 0, errors.Wrap(ErrBufferUnderrun, "optional tag")
		}
		tag := buf[index]
		index++
		switch tag {
		case 0x00:
			v.Set(reflect.Zero(v.Type()))
			return index, nil
		case 0x01:
			el := reflect.New(v.Type().Elem())
			index, err := decodeValue(buf, index, el.Elem(), p)
			if err != nil {
				return 0, err
			}
			v.Set(el)
			return index, nil
		}
		return 0, errors.Wrapf(ErrBadOptionalBoolean, "byte 0x%02x", tag)

	case reflect.Struct:
		return decodeStruct(buf, index, v, p)
	}

	return 0, errors.Wrapf(ErrUnsupportedType, "%v", v.Type())
}

func decodeWideInt(buf []byte, index int, v reflect.Value, p Params) (int, error) {
	t := v.Type()

	if p.IntEncoding == FixedInt {
		if t == uint256Type || t == int256Type {
			u, index, err := decodeUint256(buf, index, p.Endian)
			if err != nil {
				return 0, err
			}
			if t == int256Type {
				v.Set(reflect.ValueOf(Int256(u)))
			} else {
				v.Set(reflect.ValueOf(u))
			}
			return index, nil
		}
		u, index, err := decodeUint128(buf, index, p.Endian)
		if err != nil {
			return 0, err
		}
		if t == int128Type {
			v.Set(reflect.ValueOf(Int128(u)))
		} else {
			v.Set(reflect.ValueOf(u))
		}
		return index, nil
	}

	wide, index, err := decodeUvarint(buf, index, p.Endian)
	if err != nil {
		return 0, err
	}
	switch t {
	case uint256Type:
		v.Set(reflect.ValueOf(wide))
	case int256Type:
		v.Set(reflect.ValueOf(wide.unzigzag()))
	case uint128Type:
		u, ok := wide.Uint128()
		if !ok {
			return 0, errors.Wrap(ErrIntegerCast, "uvarint into uint128")
		}
		v.Set(reflect.ValueOf(u))
	case int128Type:
		i, ok := wide.unzigzag().int128()
		if !ok {
			return 0, errors.Wrap(ErrIntegerCast, "svarint into int128")
		}
		v.Set(reflect.ValueOf(i))
	}
	return index, nil
}

func decodeSlice(buf []byte, index int, v reflect.Value, p Params) (int, error) {
	n, index, err := decodeLength(buf, index, p)
	if err != nil {
		return 0, err
	}
	t := v.Type()

	// Raw-copy fast path only where it is byte-exact; varint-encoded byte
	// elements go through the walker, mirroring the encoder.
	if t.Elem() == byteType && p.IntEncoding == FixedInt {
		if n > len(buf)-index {
			return 0, errors.Wrap(ErrBufferUnderrun, "byte slice")
		}
		b := make([]byte, n)
		copy(b, buf[index:index+n])
		v.Set(reflect.ValueOf(b).Convert(t))
		return index + n, nil
	}

	// Reject absurd lengths before allocating. minEncodedSize is a lower
	// bound, zero when the element shape can legitimately be empty.
	if min := minEncodedSize(t.Elem()); min > 0 && n > (len(buf)-index)/min {
		return 0, errors.Wrapf(ErrBufferUnderrun, "sequence of %d elements", n)
	}

	s := reflect.MakeSlice(t, n, n)
	for i := 0; i < n; i++ {
		index, err = decodeValue(buf, index, s.Index(i), p)
		if err != nil {
			return 0, errors.Wrapf(err, "element %d", i)
		}
	}
	v.Set(s)
	return index, nil
}

func decodeArray(buf []byte, index int, v reflect.Value, p Params) (int, error) {
	n := v.Len()
	if p.IncludeFixedArrayLength {
		got, newIndex, err := decodeUintN(buf, index, 8, p.Endian)
		if err != nil {
			return 0, errors.Wrap(err, "array length prefix")
		}
		if got != uint64(n) {
			return 0, errors.Wrapf(ErrUnexpectedFixedArrayLen, "got %d, want %d", got, n)
		}
		index = newIndex
	}

	if v.Type().Elem() == byteType && p.IntEncoding == FixedInt {
		if n > len(buf)-index {
			return 0, errors.Wrap(ErrBufferUnderrun, "byte array")
		}
		reflect.Copy(v, reflect.ValueOf(buf[index:index+n]))
		return index + n, nil
	}

	var err error
	for i := 0; i < n; i++ {
		index, err = decodeValue(buf, index, v.Index(i), p)
		if err != nil {
			return 0, errors.Wrapf(err, "element %d", i)
		}
	}
	return index, nil
}

func decodeStruct(buf []byte, index int, v reflect.Value, p Params) (int, error) {
	si, err := structInfoOf(v.Type())
	if err != nil {
		return 0, err
	}

	if si.isUnion() {
		tf := v.Field(si.tagField.index)
		index, err = decodeValue(buf, index, tf, p)
		if err != nil {
			return 0, errors.Wrap(err, si.tagField.name)
		}
		disc := discriminantOf(tf)
		fi, ok := si.variants[disc]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownUnionTag, "%v tag %d", v.Type(), disc)
		}
		return decodeField(buf, index, v.Field(fi.index), fi, p)
	}

	// No rollback: a failure partway leaves earlier fields filled in and
	// their allocations attached to the destination.
	for _, fi := range si.fields {
		index, err = decodeField(buf, index, v.Field(fi.index), fi, p)
		if err != nil {
			return 0, err
		}
	}
	return index, nil
}

func decodeField(buf []byte, index int, v reflect.Value, fi fieldInfo, p Params) (int, error) {
	if fi.box {
		el := reflect.New(v.Type().Elem())
		index, err := decodeValue(buf, index, el.Elem(), p)
		if err != nil {
			return 0, errors.Wrap(err, fi.name)
		}
		v.Set(el)
		return index, nil
	}
	index, err := decodeValue(buf, index, v, p)
	if err != nil {
		return 0, errors.Wrap(err, fi.name)
	}
	return index, nil
}

// checkEnum validates a freshly decoded integer against its type's
// declared enum values, when the type opts in.
func checkEnum(v reflect.Value, raw uint64) error {
	if !v.Type().Implements(enumIface) {
		return nil
	}
	if !v.Interface().(Enum).ValidEnum(raw) {
		return errors.Wrapf(ErrUnknownEnumTag, "%v value %d", v.Type(), raw)
	}
	return nil
}

// signExtend reinterprets the low width bytes of u as a signed value.
func signExtend(u uint64, width int) int64 {
	shift := 64 - 8*uint(width)
	return int64(u<<shift) >> shift
}

// minEncodedSize is a cheap lower bound on the wire size of one value of
// type t. Structs report zero (a union's cheapest variant isn't worth
// computing); the bound only needs to be safe, not tight.
func minEncodedSize(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Bool, reflect.Ptr, reflect.String, reflect.Slice,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 1
	case reflect.Float32:
		return 4
	case reflect.Float64:
		return 8
	case reflect.Array:
		return t.Len() * minEncodedSize(t.Elem())
	}
	return 0
}
