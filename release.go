package bincode

import (
	"reflect"

	"github.com/pkg/errors"
)

// Release walks a previously decoded value and drops every owned
// allocation the decoder made for it: optional and box pointees, sequence
// buffers, string bytes. Contents go first, then the reference itself is
// zeroed, so after Release the destination pins nothing and the runtime
// can reclaim it all even if the caller keeps the destination around.
//
// Call it once per decoded root, with a pointer to the destination that
// was given to Unmarshal. Releasing a value that owns nothing is a no-op.
func Release(dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Wrap(ErrNotAPointer, "release")
	}
	releaseValue(rv.Elem())
	return nil
}

func releaseValue(v reflect.Value) {
	if !ownsMemory(v.Type()) {
		return
	}
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			releaseValue(v.Elem())
			v.Set(reflect.Zero(v.Type()))
		}
	case reflect.Slice:
		if !v.IsNil() {
			for i, n := 0, v.Len(); i < n; i++ {
				releaseValue(v.Index(i))
			}
			v.Set(reflect.Zero(v.Type()))
		}
	case reflect.String:
		v.SetString("")
	case reflect.Array:
		for i, n := 0, v.Len(); i < n; i++ {
			releaseValue(v.Index(i))
		}
	case reflect.Struct:
		for i, n := 0, v.NumField(); i < n; i++ {
			if f := v.Field(i); f.CanSet() {
				releaseValue(f)
			}
		}
	}
}

// ownsMemory reports whether values of type t can hold decoder-made
// allocations at all, so scalar-heavy shapes skip the walk.
func ownsMemory(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return ownsMemory(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if ownsMemory(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
