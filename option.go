package bincode

// Option is the wide optional: a 32-bit presence discriminant followed by
// a full payload, zeroed when absent. Producers of the reference stream
// always reserve the payload space, so wire cost is 4+size(T) either way
// under fixed integer encoding. Not to be confused with the native
// optional (*T), whose absent form is a single 0x00 byte.
//
// Option is deliberately a plain two-field struct: the ordinary struct
// rules already produce exactly the right bytes, so neither walker
// special-cases it.

type Option[T any] struct {
	IsSome uint32
	Value  T
}

func Some[T any](value T) Option[T] {
	return Option[T]{IsSome: 1, Value: value}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// OptionFrom wraps a maybe-value; nil becomes None with a zeroed payload.
func OptionFrom[T any](value *T) Option[T] {
	if value == nil {
		return None[T]()
	}
	return Some(*value)
}

// Into extracts the payload and reports whether it was present.
func (o Option[T]) Into() (T, bool) {
	if o.IsSome == 0 {
		var zero T
		return zero, false
	}
	return o.Value, true
}

func (o Option[T]) IsPresent() bool { return o.IsSome != 0 }
