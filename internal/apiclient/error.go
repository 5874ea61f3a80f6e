package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork: the request never got a response (unreachable, aborted).
	KindNetwork Kind = iota + 1
	// KindHTTP: the server answered with a non-2xx status and a readable body.
	KindHTTP
	// KindMalformed: a body could not be decoded as JSON.
	KindMalformed
	// KindInvalid: the request was rejected locally before being sent.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every failed call. Message is the normalized text
// shown to the user; when Notified is set the user has already seen it and
// callers must not notify again.
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Detail   any
	Notified bool
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an HTTP failure with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == status
}

// IsNotified reports whether the user was already told about err.
func IsNotified(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Notified
}
