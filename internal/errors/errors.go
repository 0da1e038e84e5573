// Package errors defines the application error taxonomy shared by the data,
// service and HTTP layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeUpstream marks a transport failure talking to the remote second-factor provider.
	ErrCodeUpstream ErrorCode = "upstream"
	// ErrCodeUntrusted marks a provider response that arrived but failed verification.
	ErrCodeUntrusted ErrorCode = "untrusted_response"
	ErrCodeInternal  ErrorCode = "internal"
	ErrCodeTimeout   ErrorCode = "timeout"
	ErrCodeCanceled  ErrorCode = "canceled"
)

var codeStatus = map[ErrorCode]int{
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeForeignKey: http.StatusBadRequest,
	ErrCodeUpstream:   http.StatusBadGateway,
	ErrCodeUntrusted:  http.StatusUnauthorized,
	ErrCodeTimeout:    http.StatusGatewayTimeout,
	ErrCodeCanceled:   http.StatusServiceUnavailable,
}

// HTTPStatus returns the status code conventionally used for c.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError is a categorized error. Message is safe to log; Cause is the wrapped error, if any.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input for validation and conflict errors.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// NotFound creates a NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// ValidationField creates a Validation error for field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Wrap categorizes err. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func as(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err is an AppError carrying code.
func IsAppError(err error, code ErrorCode) bool {
	appErr, ok := as(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool { return IsAppError(err, ErrCodeNotFound) }

func IsConflict(err error) bool { return IsAppError(err, ErrCodeConflict) }

func IsUpstream(err error) bool { return IsAppError(err, ErrCodeUpstream) }

// IsUntrusted reports whether err is a provider response that failed verification.
func IsUntrusted(err error) bool { return IsAppError(err, ErrCodeUntrusted) }

// GetCode returns the outermost AppError code in err's chain, or "".
func GetCode(err error) ErrorCode {
	if appErr, ok := as(err); ok {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field of the outermost AppError in err's chain, or "".
func GetField(err error) string {
	if appErr, ok := as(err); ok {
		return appErr.Field
	}
	return ""
}

// HTTPStatus maps err onto a response status; non-AppErrors are 500.
func HTTPStatus(err error) int {
	return GetCode(err).HTTPStatus()
}
