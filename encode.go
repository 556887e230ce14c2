package bincode

import (
	"reflect"

	"github.com/pkg/errors"
)

/*
 Wire shapes, leaf to composite:

   bool        1 byte, 00 or 01
   intN/uintN  fixed: raw N/8 bytes in Params.Endian
               varint: tiered (zigzag first when signed)
   int/uint    as 64-bit (usize/isize rule)
   f32/f64     raw 4/8 bytes, ALWAYS little-endian
   *T          1 presence byte, then payload if present
   *T "box"    payload only, indirection invisible on the wire
   [N]T        optional 8-byte length prefix, then elements
   []T, string length per IntEncoding rule, then elements
   struct      fields in declared order, no padding
   union       discriminant, then active variant's payload
   enum        discriminant only
*/

var (
	uint128Type = reflect.TypeOf(Uint128{})
	int128Type  = reflect.TypeOf(Int128{})
	uint256Type = reflect.TypeOf(Uint256{})
	int256Type  = reflect.TypeOf(Int256{})
	byteType    = reflect.TypeOf(byte(0))
	enumIface   = reflect.TypeOf((*Enum)(nil)).Elem()
)

// intWidth gives the fixed wire width in bytes for an integer kind.
// Go's int and uint are the isize/usize shapes and always travel as 64-bit.
func intWidth(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32:
		return 4
	}
	return 8
}

// appendLength writes a sequence length (a usize on the wire).
func appendLength(out []byte, n int, p Params) []byte {
	if p.IntEncoding == VarInt {
		return appendUvarint(out, uint64(n), p.Endian)
	}
	return appendUintN(out, uint64(n), 8, p.Endian)
}

// appendValue is the encoder's recursive walk. It dispatches on the static
// shape of v and appends v's wire bytes to out.
func appendValue(out []byte, v reflect.Value, p Params) ([]byte, error) {
	if !v.IsValid() {
		return nil, errors.Wrap(ErrUnsupportedType, "untyped nil")
	}
	switch v.Type() {
	case uint128Type:
		u := v.Interface().(Uint128)
		if p.IntEncoding == VarInt {
			return appendUvarint128(out, u, p.Endian), nil
		}
		return appendUint128(out, u, p.Endian), nil
	case int128Type:
		i := v.Interface().(Int128)
		if p.IntEncoding == VarInt {
			return appendUvarint128(out, i.zigzag(), p.Endian), nil
		}
		return appendUint128(out, Uint128(i), p.Endian), nil
	case uint256Type:
		u := v.Interface().(Uint256)
		if p.IntEncoding == VarInt {
			return appendUvarint256(out, u, p.Endian), nil
		}
		return appendUint256(out, u, p.Endian), nil
	case int256Type:
		i := v.Interface().(Int256)
		if p.IntEncoding == VarInt {
			return appendUvarint256(out, i.zigzag(), p.Endian), nil
		}
		return appendUint256(out, Uint256(i), p.Endian), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return appendBool(out, v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if p.IntEncoding == VarInt {
			return appendSvarint(out, v.Int(), p.Endian), nil
		}
		return appendUintN(out, uint64(v.Int()), intWidth(v.Kind()), p.Endian), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if p.IntEncoding == VarInt {
			return appendUvarint(out, v.Uint(), p.Endian), nil
		}
		return appendUintN(out, v.Uint(), intWidth(v.Kind()), p.Endian), nil

	case reflect.Float32:
		return appendFloat32(out, float32(v.Float())), nil

	case reflect.Float64:
		return appendFloat64(out, v.Float()), nil

	case reflect.String:
		out = appendLength(out, v.Len(), p)
		if p.IntEncoding == VarInt {
			s := v.String()
			for i := 0; i < len(s); i++ {
				out = appendUvarint(out, uint64(s[i]), p.Endian)
			}
			return out, nil
		}
		return append(out, v.String()...), nil

	case reflect.Slice:
		out = appendLength(out, v.Len(), p)
		return appendElements(out, v, p)

	case reflect.Array:
		if p.IncludeFixedArrayLength {
			// Always a full 8-byte length, whatever IntEncoding says.
			out = appendUintN(out, uint64(v.Len()), 8, p.Endian)
		}
		return appendElements(out, v, p)

	case reflect.Ptr:
		if v.IsNil() {
			return append(out, 0x00), nil
		}
		out = append(out, 0x01)
		return appendValue(out, v.Elem(), p)

	case reflect.Struct:
		return appendStruct(out, v, p)
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%v", v.Type())
}

func appendElements(out []byte, v reflect.Value, p Params) ([]byte, error) {
	n := v.Len()
	// Raw-copy fast path only where it is byte-exact: under varint params a
	// byte >= 251 takes the u16 tier, so elements go through the walker.
	if v.Type().Elem() == byteType && p.IntEncoding == FixedInt {
		if v.Kind() == reflect.Slice {
			return append(out, v.Bytes()...), nil
		}
		tmp := make([]byte, n)
		reflect.Copy(reflect.ValueOf(tmp), v)
		return append(out, tmp...), nil
	}
	var err error
	for i := 0; i < n; i++ {
		out, err = appendValue(out, v.Index(i), p)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return out, nil
}

func appendStruct(out []byte, v reflect.Value, p Params) ([]byte, error) {
	si, err := structInfoOf(v.Type())
	if err != nil {
		return nil, err
	}

	if si.isUnion() {
		tf := v.Field(si.tagField.index)
		out, err = appendValue(out, tf, p)
		if err != nil {
			return nil, errors.Wrap(err, si.tagField.name)
		}
		disc := discriminantOf(tf)
		fi, ok := si.variants[disc]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownUnionTag, "%v tag %d", v.Type(), disc)
		}
		return appendField(out, v.Field(fi.index), fi, p)
	}

	// Plain record: declared order, first failure aborts the rest.
	for _, fi := range si.fields {
		out, err = appendField(out, v.Field(fi.index), fi, p)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendField(out []byte, v reflect.Value, fi fieldInfo, p Params) ([]byte, error) {
	if fi.box {
		if v.IsNil() {
			return nil, errors.Wrap(ErrNilBoxPointer, fi.name)
		}
		out, err := appendValue(out, v.Elem(), p)
		return out, errors.Wrap(err, fi.name)
	}
	out, err := appendValue(out, v, p)
	if err != nil {
		return nil, errors.Wrap(err, fi.name)
	}
	return out, nil
}

// discriminantOf reads an integer field's bits as the union discriminant.
func discriminantOf(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	}
	return v.Uint()
}
