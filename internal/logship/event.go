package logship

import (
	"strings"
	"unicode/utf8"
)

// MessageMaxLen is the longest message the collector accepts, in runes.
const MessageMaxLen = 48

// Event is one structured record bound for the collector.
type Event struct {
	Stack   Stack  `json:"stack"`
	Level   Level  `json:"level"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// Validate checks the event against the collector's vocabulary. Comparison is
// case-insensitive; the returned error echoes the value as supplied. A
// validation failure is terminal and must never be retried.
func (e Event) Validate() error {
	if !validStack(normalizeStack(e.Stack)) {
		return &ValidationError{Field: "stack", Value: string(e.Stack), Err: ErrInvalidStack}
	}
	if !validLevel(normalizeLevel(e.Level)) {
		return &ValidationError{Field: "level", Value: string(e.Level), Err: ErrInvalidLevel}
	}
	if !validPackage(normalizeStack(e.Stack), normalizePackage(e.Package)) {
		return &ValidationError{Field: "package", Value: e.Package, Err: ErrInvalidPackage}
	}
	if strings.TrimSpace(e.Message) == "" {
		return &ValidationError{Field: "message", Value: e.Message, Err: ErrInvalidMessage}
	}
	if utf8.RuneCountInString(e.Message) > MessageMaxLen {
		return &ValidationError{Field: "message", Value: e.Message, Err: ErrInvalidMessage}
	}
	return nil
}

// normalized returns the wire form: stack, level, and package lowercased, the
// message as supplied.
func (e Event) normalized() Event {
	return Event{
		Stack:   normalizeStack(e.Stack),
		Level:   normalizeLevel(e.Level),
		Package: normalizePackage(e.Package),
		Message: e.Message,
	}
}

// Validate is a convenience wrapper over Event.Validate for bare field values.
func Validate(stack Stack, level Level, pkg, message string) error {
	return Event{Stack: stack, Level: level, Package: pkg, Message: message}.Validate()
}
