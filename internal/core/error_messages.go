package core

// error_messages.go maps core errors to support codes.
//
// Codes are logged next to every failed request so an operator can match a
// client report to the server-side cause.
//
// # Path Errors (PATH001-PATH099)
//
//	PATH001 - Invalid input: missing, malformed or Windows-style path
//	PATH002 - Path escape: relative path resolves outside BASE_DIR
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Read failed: missing, unreadable, not a regular file, too large
//	FILE002 - Invalid CSV: unbalanced quotes or other unrecoverable syntax
//
// # Capacity Errors (BUSY001-BUSY099)
//
//	BUSY001 - Busy: no parse slot became free in time
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the logged technical error

import (
	"context"
	"errors"
)

// UserMessage pairs a client-facing message with a support code.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type kindMessage struct {
	kind   error
	code   string
	action string
}

// Order matters: the first matching kind wins.
var kindMessages = []kindMessage{
	{ErrInvalidInput, "PATH001", "Pass a relative path under the base directory or an absolute path"},
	{ErrPathEscape, "PATH002", "Remove '..' segments that leave the base directory"},
	{ErrFileRead, "FILE001", "Check that the file exists and is readable"},
	{ErrParse, "FILE002", "Ensure the file is comma-separated with balanced quotes"},
	{ErrBusy, "BUSY001", "Please wait a moment and try again"},
	{context.Canceled, "REQ001", "Please try again"},
	{context.DeadlineExceeded, "REQ002", "Try a smaller file or try again later"},
}

// MapError converts err into a UserMessage. Unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return UserMessage{Message: Message(err), Action: km.action, Code: km.code}
		}
	}
	return UserMessage{
		Message: Message(err),
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// ErrorCode is shorthand for MapError(err).Code.
func ErrorCode(err error) string {
	return MapError(err).Code
}
