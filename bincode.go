// Package bincode is a structural binary codec: values whose shape is
// known at compile time go to and from a compact byte stream, with a
// configurable integer representation and endianness. Encode and decode
// dispatch purely on the static shape of the value and compose
// structurally for nested shapes; the same Params must be used for a
// write and the matching read.
package bincode

import (
	"reflect"

	"github.com/pkg/errors"
)

// Marshal encodes value into a freshly allocated buffer, sized exactly
// via the size walk so the encode pass never reallocates.
//
// The top-level shape is taken literally: passing a *T encodes the
// optional shape, presence byte and all. Pass the value itself for the
// bare shape.
func Marshal(value any, p Params) ([]byte, error) {
	size, err := SizeOf(value, p)
	if err != nil {
		return nil, err
	}
	return appendValue(make([]byte, 0, size), reflect.ValueOf(value), p)
}

// MarshalTo encodes value into dst and returns the number of bytes
// written. Fails with ErrBufferTooSmall if dst can't hold the encoding;
// dst contents are unspecified after a failure.
func MarshalTo(dst []byte, value any, p Params) (int, error) {
	out, err := appendValue(dst[:0:len(dst)], reflect.ValueOf(value), p)
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, errors.Wrapf(ErrBufferTooSmall, "need %d bytes, have %d", len(out), len(dst))
	}
	return len(out), nil
}

// Append encodes value onto the end of dst, growing it as needed, and
// returns the extended slice. This is the core entry the other writers
// are wrappers over.
func Append(dst []byte, value any, p Params) ([]byte, error) {
	return appendValue(dst, reflect.ValueOf(value), p)
}

// Unmarshal decodes buf into dest, which must be a non-nil pointer to the
// destination value, and returns the number of bytes consumed. Memory
// allocated for pointer, slice and string shapes is owned by dest; hand
// dest to Release to drop it eagerly. On failure, fields decoded before
// the failing one are left populated.
func Unmarshal(buf []byte, dest any, p Params) (int, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return 0, errors.Wrap(ErrNotAPointer, "unmarshal")
	}
	return decodeValue(buf, 0, rv.Elem(), p)
}

// SizeOf returns the exact number of bytes Marshal would produce for
// value, without encoding anything.
func SizeOf(value any, p Params) (int, error) {
	return sizeValue(reflect.ValueOf(value), p)
}
