package game

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeInvalidInput marks a malformed game definition: a coalition that
	// repeats a member, a roster that repeats a player, or too many players.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeMissingCoalitionValue marks a query that needed the worth of a
	// coalition the game does not define.
	CodeMissingCoalitionValue Code = "MISSING_COALITION_VALUE"
)

// Error is the error type returned by this package.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable description
	Metadata map[string]string // Offending coalition, player, etc.
	Cause    error             // Wrapped underlying error
}

var (
	// ErrInvalidInput matches any error with CodeInvalidInput via errors.Is.
	ErrInvalidInput = &Error{Code: CodeInvalidInput, Message: "invalid input"}

	// ErrMissingCoalitionValue matches any error with
	// CodeMissingCoalitionValue via errors.Is.
	ErrMissingCoalitionValue = &Error{Code: CodeMissingCoalitionValue, Message: "missing coalition value"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or the empty
// code when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalidInput(message string, metadata map[string]string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message, Metadata: metadata}
}
