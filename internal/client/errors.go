package client

import (
	"errors"
	"fmt"
)

// TransportError means the backend could not be reached or the response
// could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ServerError means a response arrived carrying an explicit error, either as
// a non-2xx status or as an error payload in a 2xx body.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: server error (%d): %s", e.Op, e.StatusCode, e.Message)
}

// NotReadyError is the 202 "retry later" answer. It is not a failure.
type NotReadyError struct {
	Op      string
	Message string
}

func (e *NotReadyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Op + ": not ready"
	}
	return fmt.Sprintf("%s: not ready: %s", e.Op, e.Message)
}

func IsNotReady(err error) bool {
	var notReady *NotReadyError
	return errors.As(err, &notReady)
}

func AsServerError(err error) *ServerError {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr
	}
	return nil
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
