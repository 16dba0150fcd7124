package service

import "errors"

var (
	// ErrNotStarted is returned by operations invoked before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidInput is returned when a request argument is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownBackend is returned by Start for an unsupported performance log backend.
	ErrUnknownBackend = errors.New("unknown performance log backend")
)
