// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package optional holds a value that may or may not be present. Iterators
// return it instead of a (value, bool) pair.
package optional

type Optional[T any] struct {
	present bool
	value   T
}

func (self Optional[T]) IsPresent() bool {
	return self.present
}

func (self Optional[T]) Value() T {
	return self.value
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{
		present: true,
		value:   v,
	}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}
