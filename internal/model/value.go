package model

import "encoding/json"

// Value is an indicator reading that is either present or explicitly absent.
// The zero value is absent.
type Value[T any] struct {
	v  T
	ok bool
}

// Some wraps a present reading.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent reading.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the reading and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Present reports whether the reading is available.
func (o Value[T]) Present() bool {
	return o.ok
}

// MarshalJSON renders absent readings as null.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}
