// Package svcerrors defines the error taxonomy shared across the pipeline's
// HTTP surfaces, per the retry/abort policy table.
package svcerrors

import (
	"fmt"
	"net/http"
)

// ErrorCode categorises a ServiceError for logging and client response.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeTransientTransport ErrorCode = "TRANSIENT_TRANSPORT"
	CodeCircuitOpen        ErrorCode = "CIRCUIT_OPEN"
	CodeCredentialSafe     ErrorCode = "CREDENTIAL_SAFE"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeInternal           ErrorCode = "INTERNAL"
)

// ServiceError is the single error type returned across HTTP boundaries.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches structured detail fields and returns the receiver.
func (e *ServiceError) WithDetails(d map[string]interface{}) *ServiceError {
	e.Details = d
	return e
}

func new(code ErrorCode, status int, msg string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: msg, HTTPStatus: status, Err: err}
}

func Validation(msg string) *ServiceError {
	return new(CodeValidation, http.StatusBadRequest, msg, nil)
}

func Unauthorized(msg string) *ServiceError {
	return new(CodeUnauthorized, http.StatusUnauthorized, msg, nil)
}

func Forbidden(msg string) *ServiceError {
	return new(CodeForbidden, http.StatusForbidden, msg, nil)
}

func NotFound(msg string) *ServiceError {
	return new(CodeNotFound, http.StatusNotFound, msg, nil)
}

func Conflict(msg string) *ServiceError {
	return new(CodeConflict, http.StatusConflict, msg, nil)
}

func TransientTransport(msg string, err error) *ServiceError {
	return new(CodeTransientTransport, http.StatusBadGateway, msg, err)
}

func CircuitOpen(msg string) *ServiceError {
	return new(CodeCircuitOpen, http.StatusServiceUnavailable, msg, nil)
}

// CredentialSafe wraps an underlying error but records only its Go type name,
// never its message, since the message may carry secret fragments from an
// upstream library.
func CredentialSafe(msg string, err error) *ServiceError {
	se := new(CodeCredentialSafe, http.StatusUnauthorized, msg, nil)
	if err != nil {
		se.Details = map[string]interface{}{"error_type": fmt.Sprintf("%T", err)}
	}
	return se
}

func ServiceUnavailable(msg string) *ServiceError {
	return new(CodeServiceUnavailable, http.StatusServiceUnavailable, msg, nil)
}

func RateLimited(msg string) *ServiceError {
	return new(CodeRateLimited, http.StatusTooManyRequests, msg, nil)
}

func Internal(msg string, err error) *ServiceError {
	return new(CodeInternal, http.StatusInternalServerError, msg, err)
}

// IsTransient reports whether err (or a wrapped *ServiceError within it)
// represents a condition the retry policy should act on.
func IsTransient(err error) bool {
	se, ok := err.(*ServiceError)
	if !ok {
		return false
	}
	return se.Code == CodeTransientTransport || se.Code == CodeServiceUnavailable
}
