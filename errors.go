package bincode

import (
	"github.com/pkg/errors"
)

// Every failure the codec can produce wraps one of these sentinels, so
// callers can errors.Is against them through the added context.
var (
	ErrBadBoolean              = errors.New("boolean byte is not 0 or 1")
	ErrBadOptionalBoolean      = errors.New("optional presence byte is not 0 or 1")
	ErrUnknownEnumTag          = errors.New("enum discriminant matches no declared value")
	ErrUnknownUnionTag         = errors.New("union discriminant matches no variant")
	ErrUnexpectedFixedArrayLen = errors.New("fixed array length prefix disagrees with the array")
	ErrIntegerCast             = errors.New("integer does not fit in the destination width")
	ErrDataTooLarge            = errors.New("length does not fit in a platform int")
	ErrBufferUnderrun          = errors.New("ran off the end of the buffer")
	ErrBufferTooSmall          = errors.New("destination buffer is too small")
	ErrNilBoxPointer           = errors.New("box pointer is nil")
	ErrUnsupportedType         = errors.New("type has no wire shape")
	ErrNotAPointer             = errors.New("destination must be a non-nil pointer")
)
