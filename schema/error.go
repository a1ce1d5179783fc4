package schema

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Err is the kind of failure returned by the uploader. Errors returned from
// this module wrap one of these kinds, so callers can use errors.Is to
// decide how to react.
type Err int

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrInvalidKey Err = iota + 1
	ErrSyncFailed
	ErrNetwork
	ErrEncoding
)

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (e Err) Error() string {
	switch e {
	case ErrInvalidKey:
		return "invalid key"
	case ErrSyncFailed:
		return "sync failed"
	case ErrNetwork:
		return "network error"
	case ErrEncoding:
		return "encoding error"
	default:
		return fmt.Sprintf("error %d", int(e))
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// With returns the error kind with additional context
func (e Err) With(args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

// Withf returns the error kind with formatted context
func (e Err) Withf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// Wrap returns the error kind wrapping a cause. Both the kind and the cause
// match with errors.Is. A nil cause returns nil.
func (e Err) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", e, err)
}
