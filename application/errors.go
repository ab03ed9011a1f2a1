package application

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionFailure  = errors.New("connection failed")
	ErrSubscribeFailure   = errors.New("subscribe failed")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrCorruptDeviceStore = errors.New("corrupt device store")
)

// HTTPError is returned when the backend answered with a non-success status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Error: %s", e.Message)
}

// UnexpectedError covers transport and decoding failures.
type UnexpectedError struct {
	Message string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("Unexpected Error: %s", e.Message)
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
