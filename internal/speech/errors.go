package speech

import (
	"errors"
	"fmt"
)

// Errors surfaced to the user. They are matched with errors.Is against any
// *Error carrying the corresponding code.
var (
	// ErrEmptyInput indicates the text is blank after trimming.
	ErrEmptyInput = errors.New("text is empty")

	// ErrTooLong indicates the text exceeds MaxTextLength characters.
	ErrTooLong = errors.New("text is too long")

	// ErrSynthesisFailed indicates the synthesizer returned an error.
	ErrSynthesisFailed = errors.New("text synthesis failed")

	// ErrUnsupportedLanguage indicates a language code outside the catalog.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnsupportedAccent indicates an accent variant outside the catalog.
	ErrUnsupportedAccent = errors.New("unsupported accent")

	// ErrNoEngineConfigured indicates no synthesis engine has been selected.
	ErrNoEngineConfigured = errors.New("no synthesis engine configured")

	// ErrInvalidEngine indicates an unknown engine was specified.
	ErrInvalidEngine = errors.New("invalid synthesis engine specified")

	// ErrEngineNotAvailable indicates the selected engine cannot run here.
	ErrEngineNotAvailable = errors.New("selected synthesis engine is not available")
)

// ErrorCode identifies specific error types.
type ErrorCode string

const (
	ErrorCodeEmptyInput          ErrorCode = "EMPTY_INPUT"
	ErrorCodeTextTooLong         ErrorCode = "TEXT_TOO_LONG"
	ErrorCodeSynthesisFailure    ErrorCode = "SYNTHESIS_FAILURE"
	ErrorCodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	ErrorCodeUnsupportedAccent   ErrorCode = "UNSUPPORTED_ACCENT"
)

var codeSentinels = map[ErrorCode]error{
	ErrorCodeEmptyInput:          ErrEmptyInput,
	ErrorCodeTextTooLong:         ErrTooLong,
	ErrorCodeSynthesisFailure:    ErrSynthesisFailed,
	ErrorCodeUnsupportedLanguage: ErrUnsupportedLanguage,
	ErrorCodeUnsupportedAccent:   ErrUnsupportedAccent,
}

// Error is a user-facing synthesis error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewError creates a new Error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

// UserMessage returns the text shown to the user. Synthesis failures pass
// the cause's message through unchanged.
func (e *Error) UserMessage() string {
	if e.Code == ErrorCodeSynthesisFailure && e.Cause != nil {
		return "Error generating audio: " + e.Cause.Error()
	}
	return e.Message
}

// UserMessage returns the user-facing text for any error.
func UserMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}
