package logship

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStack is returned when an event names an unknown stack.
	ErrInvalidStack = errors.New("stack not recognized")
	// ErrInvalidLevel is returned when an event names an unknown level.
	ErrInvalidLevel = errors.New("level not recognized")
	// ErrInvalidPackage is returned when the package is not allowed for the stack.
	ErrInvalidPackage = errors.New("package not allowed for stack")
	// ErrInvalidMessage is returned when the message is blank or over MessageMaxLen runes.
	ErrInvalidMessage = errors.New("message blank or too long")
	// ErrMissingCredentials is returned before any network I/O when a
	// collector credential field is blank.
	ErrMissingCredentials = errors.New("collector credentials incomplete")
	// ErrAuthMalformed is returned when a successful auth response lacks a
	// usable token or expiry.
	ErrAuthMalformed = errors.New("auth response missing token fields")
)

// ErrorClassifier allows errors to declare their classification for
// diagnostics. Known kinds: "validation", "auth", "transport", "exhausted".
type ErrorClassifier interface {
	ErrorKind() string
}

// ErrorKind returns the classification of err, or "unknown".
func ErrorKind(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return "unknown"
}

// ValidationError reports a rejected event field with the value as the caller
// supplied it.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) ErrorKind() string { return "validation" }

// AuthError reports a failed credential exchange with the collector.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("collector auth: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	}
	return fmt.Sprintf("collector auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) ErrorKind() string { return "auth" }

// TransportError reports a single failed delivery to the collector's log
// endpoint.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("ship log: http %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("ship log: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("ship log: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) ErrorKind() string { return "transport" }

// ShipError reports that every delivery attempt for an event failed. It wraps
// the error from the final attempt.
type ShipError struct {
	Attempts int
	Err      error
}

func (e *ShipError) Error() string {
	return fmt.Sprintf("ship log: failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ShipError) Unwrap() error { return e.Err }

func (e *ShipError) ErrorKind() string { return "exhausted" }
