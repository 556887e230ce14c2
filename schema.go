package bincode

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Struct traversal is driven by `bincode` struct tags:
//
//   `bincode:"-"`          field is skipped entirely
//   `bincode:"tag"`        field is a union discriminant (integer kind)
//   `bincode:"variant=N"`  field is the union payload for discriminant N
//   `bincode:"box"`        pointer field is an owned indirection: encoded
//                          as the bare pointee, not as an optional
//
// A struct with a tag field is a tagged union: the discriminant travels
// first, then only the matching variant's payload. A struct without one is
// a plain record, fields in declared order. Unexported fields are skipped.

// Enum marks a named integer type as having a closed set of wire values.
// Decode checks the discriminant with ValidEnum and rejects strays.
type Enum interface {
	ValidEnum(tag uint64) bool
}

type fieldInfo struct {
	index     int
	name      string
	box       bool
	variant   uint64
	isVariant bool
}

type structInfo struct {
	fields   []fieldInfo // encodable fields in declared order
	tagField *fieldInfo  // nil for plain structs
	variants map[uint64]fieldInfo
}

func (si *structInfo) isUnion() bool { return si.tagField != nil }

var structInfoCache sync.Map // reflect.Type -> *structInfo

// structInfoOf parses a struct type's tags once and caches the result.
// Malformed tag combinations are programmer errors and reported verbosely.
func structInfoOf(t reflect.Type) (*structInfo, error) {
	if cached, ok := structInfoCache.Load(t); ok {
		return cached.(*structInfo), nil
	}

	si := &structInfo{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("bincode")
		switch {
		case tag == "":
			si.fields = append(si.fields, fieldInfo{index: i, name: f.Name})
		case tag == "-":
			continue
		case tag == "tag":
			if si.tagField != nil {
				return nil, errors.Errorf("%v: more than one tag field (%s and %s)",
					t, si.tagField.name, f.Name)
			}
			if !isIntegerKind(f.Type.Kind()) {
				return nil, errors.Errorf("%v: tag field %s must be an integer type", t, f.Name)
			}
			si.tagField = &fieldInfo{index: i, name: f.Name}
		case tag == "box":
			if f.Type.Kind() != reflect.Ptr {
				return nil, errors.Errorf("%v: box field %s must be a pointer", t, f.Name)
			}
			si.fields = append(si.fields, fieldInfo{index: i, name: f.Name, box: true})
		case strings.HasPrefix(tag, "variant="):
			n, err := strconv.ParseUint(tag[len("variant="):], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%v: field %s variant number", t, f.Name)
			}
			si.fields = append(si.fields, fieldInfo{index: i, name: f.Name, variant: n, isVariant: true})
		default:
			return nil, errors.Errorf("%v: field %s has unknown bincode tag %q", t, f.Name, tag)
		}
	}

	if si.tagField != nil {
		si.variants = make(map[uint64]fieldInfo, len(si.fields))
		for _, fi := range si.fields {
			if !fi.isVariant {
				return nil, errors.Errorf("%v: union has non-variant field %s", t, fi.name)
			}
			if _, dup := si.variants[fi.variant]; dup {
				return nil, errors.Errorf("%v: duplicate variant %d", t, fi.variant)
			}
			si.variants[fi.variant] = fi
		}
	} else {
		for _, fi := range si.fields {
			if fi.isVariant {
				return nil, errors.Errorf("%v: variant field %s without a tag field", t, fi.name)
			}
		}
	}

	structInfoCache.Store(t, si)
	return si, nil
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
