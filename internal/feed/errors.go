package feed

import (
	"errors"
	"fmt"
)

// ConnectionError represents a failure to establish or authenticate the
// feed connection. Not retried internally; reconnect policy belongs to
// the caller.
type ConnectionError struct {
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feed connection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("feed connection error: %s", e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ConnectionClosedError indicates the peer closed the connection or the
// read deadline expired while waiting for the next message.
type ConnectionClosedError struct {
	Cause error
}

func (e *ConnectionClosedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feed connection closed: %v", e.Cause)
	}
	return "feed connection closed"
}

func (e *ConnectionClosedError) Unwrap() error {
	return e.Cause
}

// IsConnectionClosed reports whether err is a ConnectionClosedError.
func IsConnectionClosed(err error) bool {
	var closed *ConnectionClosedError
	return errors.As(err, &closed)
}
