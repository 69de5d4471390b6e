package core

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these,
// so callers can branch with errors.Is without inspecting messages.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPathEscape   = errors.New("path escape")
	ErrFileRead     = errors.New("file read failed")
	ErrParse        = errors.New("csv parse failed")
	ErrBusy         = errors.New("too many concurrent parses")
)

// Error carries a kind, the operation that failed and a client-safe message.
// The technical cause (if any) is kept in Err for logging.
type Error struct {
	Kind    error  // one of the Err* kinds above
	Op      string // operation that failed
	Path    string // the path involved, if any
	Message string // safe to return to clients
	Err     error  // underlying cause
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += ": " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, path, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Message: message, Err: cause}
}

// Message returns the client-facing message for err. Errors that did not
// originate in the core get a generic message so internals never leak.
func Message(err error) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return "Internal Server Error"
}

// KindOf returns the kind sentinel wrapped by err, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrPathEscape, ErrFileRead, ErrParse, ErrBusy} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrPathEscape)
}

func invalidInput(op, path, message string) *Error {
	return newError(ErrInvalidInput, op, path, message, nil)
}

func parseError(path string, line, column int, cause error) *Error {
	return newError(ErrParse, "parse", path,
		fmt.Sprintf("Invalid CSV at line %d, column %d: %v", line, column, cause), cause)
}

// NewInvalidInput builds an ErrInvalidInput error for request validation
// done outside the core, such as a missing query parameter.
func NewInvalidInput(op, message string) error {
	return invalidInput(op, "", message)
}

// IsContextError reports whether err came from a cancelled or expired
// request context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
