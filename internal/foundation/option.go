// Package foundation holds small generic building blocks.
package foundation

import "fmt"

// Option represents a value that may or may not be present.
type Option[T any] struct {
	value   T
	present bool
}

// Some creates an Option with a value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

// None creates an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome returns true if the Option contains a value.
func (o Option[T]) IsSome() bool { return o.present }

// IsNone returns true if the Option is empty.
func (o Option[T]) IsNone() bool { return !o.present }

// Get returns the value and whether it was present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// UnwrapOr returns the value if present, otherwise returns the fallback.
func (o Option[T]) UnwrapOr(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// Take moves the value out of the Option, leaving it empty.
// The second return value is false when the Option was already empty.
func (o *Option[T]) Take() (T, bool) {
	var zero T
	if o == nil || !o.present {
		return zero, false
	}
	v := o.value
	o.value = zero
	o.present = false
	return v, true
}

func (o Option[T]) String() string {
	if o.present {
		return fmt.Sprintf("Some(%v)", o.value)
	}
	return "None"
}
