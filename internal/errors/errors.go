// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeNotARepository   ErrorType = "NOT_A_REPOSITORY"
	ErrorTypeRepository       ErrorType = "REPOSITORY"
	ErrorTypeIndexWrite       ErrorType = "INDEX_WRITE"
	ErrorTypeNoIdentity       ErrorType = "NO_IDENTITY"
	ErrorTypeInvalidPath      ErrorType = "INVALID_PATH"
	ErrorTypeInvalidTimestamp ErrorType = "INVALID_TIMESTAMP"
	ErrorTypeValidation       ErrorType = "VALIDATION"
)

// Error is the single failure shape surfaced to callers. Message is what the
// UI renders, so it is never empty.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, code int, message string, err error) *Error {
	if message == "" {
		message = string(t)
	}
	return &Error{
		Type:    t,
		Message: message,
		Code:    code,
		Err:     err,
	}
}

func NotARepository(path string, err error) *Error {
	return newError(ErrorTypeNotARepository, http.StatusNotFound,
		fmt.Sprintf("not a git repository: %s", path), err)
}

// Repository passes the storage engine's message through verbatim.
func Repository(err error) *Error {
	if e, ok := As(err); ok {
		return e
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "repository error"
	}
	return newError(ErrorTypeRepository, http.StatusInternalServerError, msg, err)
}

func IndexWrite(err error) *Error {
	msg := "failed to write index"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return newError(ErrorTypeIndexWrite, http.StatusInternalServerError, msg, err)
}

func NoIdentity() *Error {
	return newError(ErrorTypeNoIdentity, http.StatusUnprocessableEntity,
		"no identity configured: set user.name and user.email", nil)
}

func InvalidPath(path, reason string) *Error {
	return newError(ErrorTypeInvalidPath, http.StatusBadRequest,
		fmt.Sprintf("invalid file path %q: %s", path, reason), nil)
}

func InvalidTimestamp(seconds int64) *Error {
	return newError(ErrorTypeInvalidTimestamp, http.StatusInternalServerError,
		fmt.Sprintf("invalid timestamp: %d", seconds), nil)
}

func ValidationError(message string, details any) *Error {
	e := newError(ErrorTypeValidation, http.StatusBadRequest, message, nil)
	e.Details = details
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err carries an *Error of type t.
func IsType(err error, t ErrorType) bool {
	e, ok := As(err)
	return ok && e.Type == t
}
