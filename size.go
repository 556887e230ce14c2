package bincode

import (
	"reflect"

	"github.com/pkg/errors"
)

// sizeValue computes exactly what appendValue would emit, without
// allocating. Kept in lockstep with the encoder's dispatch.
func sizeValue(v reflect.Value, p Params) (int, error) {
	if !v.IsValid() {
		return 0, errors.Wrap(ErrUnsupportedType, "untyped nil")
	}
	switch v.Type() {
	case uint128Type:
		if p.IntEncoding == VarInt {
			return sizeUvarint128(v.Interface().(Uint128)), nil
		}
		return 16, nil
	case int128Type:
		if p.IntEncoding == VarInt {
			return sizeUvarint128(v.Interface().(Int128).zigzag()), nil
		}
		return 16, nil
	case uint256Type:
		if p.IntEncoding == VarInt {
			return sizeUvarint256(v.Interface().(Uint256)), nil
		}
		return 32, nil
	case int256Type:
		if p.IntEncoding == VarInt {
			return sizeUvarint256(v.Interface().(Int256).zigzag()), nil
		}
		return 32, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return 1, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if p.IntEncoding == VarInt {
			return sizeUvarint(zigzag64(v.Int())), nil
		}
		return intWidth(v.Kind()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if p.IntEncoding == VarInt {
			return sizeUvarint(v.Uint()), nil
		}
		return intWidth(v.Kind()), nil

	case reflect.Float32:
		return 4, nil

	case reflect.Float64:
		return 8, nil

	case reflect.String:
		size := sizeLength(v.Len(), p)
		if p.IntEncoding == VarInt {
			s := v.String()
			for i := 0; i < len(s); i++ {
				size += sizeUvarint(uint64(s[i]))
			}
			return size, nil
		}
		return size + v.Len(), nil

	case reflect.Slice:
		size := sizeLength(v.Len(), p)
		n, err := sizeElements(v, p)
		return size + n, err

	case reflect.Array:
		size := 0
		if p.IncludeFixedArrayLength {
			size = 8
		}
		n, err := sizeElements(v, p)
		return size + n, err

	case reflect.Ptr:
		if v.IsNil() {
			return 1, nil
		}
		n, err := sizeValue(v.Elem(), p)
		return 1 + n, err

	case reflect.Struct:
		return sizeStruct(v, p)
	}

	return 0, errors.Wrapf(ErrUnsupportedType, "%v", v.Type())
}

func sizeElements(v reflect.Value, p Params) (int, error) {
	n := v.Len()
	if v.Type().Elem() == byteType && p.IntEncoding == FixedInt {
		return n, nil
	}
	size := 0
	for i := 0; i < n; i++ {
		el, err := sizeValue(v.Index(i), p)
		if err != nil {
			return 0, errors.Wrapf(err, "element %d", i)
		}
		size += el
	}
	return size, nil
}

func sizeStruct(v reflect.Value, p Params) (int, error) {
	si, err := structInfoOf(v.Type())
	if err != nil {
		return 0, err
	}

	if si.isUnion() {
		tf := v.Field(si.tagField.index)
		size, err := sizeValue(tf, p)
		if err != nil {
			return 0, errors.Wrap(err, si.tagField.name)
		}
		disc := discriminantOf(tf)
		fi, ok := si.variants[disc]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownUnionTag, "%v tag %d", v.Type(), disc)
		}
		n, err := sizeField(v.Field(fi.index), fi, p)
		return size + n, err
	}

	size := 0
	for _, fi := range si.fields {
		n, err := sizeField(v.Field(fi.index), fi, p)
		if err != nil {
			return 0, err
		}
		size += n
	}
	return size, nil
}

func sizeField(v reflect.Value, fi fieldInfo, p Params) (int, error) {
	if fi.box {
		if v.IsNil() {
			return 0, errors.Wrap(ErrNilBoxPointer, fi.name)
		}
		n, err := sizeValue(v.Elem(), p)
		if err != nil {
			return 0, errors.Wrap(err, fi.name)
		}
		return n, nil
	}
	n, err := sizeValue(v, p)
	if err != nil {
		return 0, errors.Wrap(err, fi.name)
	}
	return n, nil
}

func sizeLength(n int, p Params) int {
	if p.IntEncoding == VarInt {
		return sizeUvarint(uint64(n))
	}
	return 8
}
