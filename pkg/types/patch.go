package types

import (
	"bytes"
	"encoding/json"
)

// PatchField carries three-state patch semantics for a single field: leave the
// stored value alone, clear it, or set a new one. In JSON, an absent field
// keeps, an explicit null clears, and a value sets.
type PatchField[T any] struct {
	present bool
	null    bool
	value   T
}

// KeepField returns the no-op patch state.
func KeepField[T any]() PatchField[T] {
	return PatchField[T]{}
}

// ClearField returns the state that erases the stored value.
func ClearField[T any]() PatchField[T] {
	return PatchField[T]{present: true, null: true}
}

// SetField returns the state that replaces the stored value.
func SetField[T any](value T) PatchField[T] {
	return PatchField[T]{present: true, value: value}
}

// IsKeep reports whether the field should be left untouched.
func (f PatchField[T]) IsKeep() bool {
	return !f.present
}

// IsClear reports whether the stored value should be erased.
func (f PatchField[T]) IsClear() bool {
	return f.present && f.null
}

// Get returns the replacement value and whether one was provided.
func (f PatchField[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Apply resolves the patched value against the currently stored pointer.
func (f PatchField[T]) Apply(current *T) *T {
	if !f.present {
		return current
	}
	if f.null {
		return nil
	}
	v := f.value
	return &v
}

// UnmarshalJSON is only invoked for fields present in the payload, so any call
// flips the field out of its keep state.
func (f *PatchField[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}
