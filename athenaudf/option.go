// SPDX-License-Identifier: Apache-2.0

package athenaudf

// Option is a value that may be absent. It stands in for a nullable column
// element: reading a null position yields an absent Option, and writing an
// absent Option produces a null element.
type Option[T any] struct {
	value T
	valid bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, valid: true}
}

// None returns the absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.valid
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.valid }

// IsNone reports whether the Option is absent.
func (o Option[T]) IsNone() bool { return !o.valid }

// flatten collapses one level of nesting: Some(inner) keeps inner as-is,
// None stays None.
func flatten[T any](o Option[Option[T]]) Option[T] {
	if inner, ok := o.Get(); ok {
		return inner
	}
	return None[T]()
}
