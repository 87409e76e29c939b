package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when the same action already has a request in
	// flight.
	ErrBusy = errors.New("request already in flight")
	// ErrCancelled is returned when a destructive action was not confirmed.
	ErrCancelled = errors.New("cancelled")
)

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Message: fmt.Sprintf(format, args...)}
}
