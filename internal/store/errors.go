package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrConflict           = errors.New("conflict")
)

var ErrInvalidReference = errors.New("invalid reference")

// ReferenceError reports a request field pointing at a row the user cannot
// use, such as a folder_id of another user or an unknown tag id.
type ReferenceError struct {
	Field string
	ID    int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Field, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrInvalidReference
}
