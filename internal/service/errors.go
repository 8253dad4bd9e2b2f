package service

import (
	"errors"
	"fmt"
)

// MalformedMessageError indicates a received message could not be
// parsed into the expected shape. Logged and skipped; never fatal to
// the pipeline.
type MalformedMessageError struct {
	Cause error
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message: %v", e.Cause)
}

func (e *MalformedMessageError) Unwrap() error {
	return e.Cause
}

// PersistenceError indicates the atomic write unit for a race failed.
// The race is not marked durably stored; the loop continues.
type PersistenceError struct {
	RaceID string
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist race %s: %v", e.RaceID, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// IsMalformedMessage reports whether err is a MalformedMessageError.
func IsMalformedMessage(err error) bool {
	var malformed *MalformedMessageError
	return errors.As(err, &malformed)
}

// IsPersistenceError reports whether err is a PersistenceError.
func IsPersistenceError(err error) bool {
	var persistence *PersistenceError
	return errors.As(err, &persistence)
}
