package meme

import (
	"errors"
	"fmt"
)

// ErrControlDisabled is returned when an action arrives while its control is
// disabled in the current state.
var ErrControlDisabled = errors.New("control is disabled")

// ErrNonSquareCanvas is returned by New for surfaces whose width and height
// differ. The fit rule only keeps the image inside a square canvas.
var ErrNonSquareCanvas = errors.New("canvas must be square")

// ErrorCode identifies the kind of a controller error.
type ErrorCode string

const (
	ErrorCodeInvalidDimension  ErrorCode = "INVALID_DIMENSION"
	ErrorCodeDecode            ErrorCode = "DECODE_ERROR"
	ErrorCodeVoiceResolution   ErrorCode = "VOICE_RESOLUTION_MISS"
	ErrorCodeControlDisabled   ErrorCode = "CONTROL_DISABLED"
	ErrorCodeSpeechUnavailable ErrorCode = "SPEECH_UNAVAILABLE"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeUnknownMessage    ErrorCode = "UNKNOWN_MESSAGE"
)

// Error is a controller error with a code and optional context. None of the
// codes end the session; the triggering action simply fails.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new controller error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
