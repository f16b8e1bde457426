package domain

import "errors"

var (
	// ErrInvalidInput marks a request missing required fields
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers both absent records and records owned by someone else
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means a dependent service is not configured
	ErrUnavailable = errors.New("service unavailable")
	// ErrCorruptTranscript flags stored data that violates the transcript model
	ErrCorruptTranscript = errors.New("corrupt transcript")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
