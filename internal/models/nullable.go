package models

import (
	"bytes"
	"encoding/json"
)

// Nullable is a partial-update field with three states: absent (left
// untouched), null (cleared) and a value. Use it with the omitzero json
// option so absent fields are not sent.
type Nullable[T any] struct {
	value T
	valid bool
	set   bool
}

// Some sets the field to v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, valid: true, set: true}
}

// Null clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{set: true}
}

// IsZero reports whether the field was left out.
func (n Nullable[T]) IsZero() bool {
	return !n.set
}

func (n Nullable[T]) IsNull() bool {
	return n.set && !n.valid
}

// Ptr returns the value, or nil when the field is absent or null.
func (n Nullable[T]) Ptr() *T {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// ApplyTo overwrites *dst when the field was given.
func (n Nullable[T]) ApplyTo(dst **T) {
	if n.set {
		*dst = n.Ptr()
	}
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.value, n.valid = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &n.value); err != nil {
		return err
	}
	n.valid = true
	return nil
}

// validationValue hands the validator a pointer so omitempty skips only
// absent and null fields, never a present zero.
func (n Nullable[T]) validationValue() any {
	return n.Ptr()
}

type validatable interface {
	validationValue() any
}
