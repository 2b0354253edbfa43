package http

import (
	"fmt"
	"net/http"
	"time"
)

// Error codes shared by handlers and clients.
const (
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeNotFound    = "ERR_NOT_FOUND"
	CodeConflict    = "ERR_CONFLICT"
	CodeRateLimited = "ERR_RATE_LIMITED"
	CodeUpstream    = "ERR_UPSTREAM"
	CodeInternal    = "ERR_INTERNAL"
)

// AppError is an error with the HTTP status and machine code it is reported under.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Field      string                 `json:"field,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty"`
	Status     int                    `json:"-"`
	RetryAfter time.Duration          `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an application error without params.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithParam attaches one detail clients can act on, e.g. the minimum bar count.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError keeps the cause for logs; it is never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound)
}

func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// UnprocessableError reports well-formed input the engines cannot evaluate.
func UnprocessableError(code, message string) *AppError {
	return NewAppError(code, message, http.StatusUnprocessableEntity)
}

func BadGatewayError(message string) *AppError {
	return NewAppError(CodeUpstream, message, http.StatusBadGateway)
}

func ConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// TooManyRequestsError sets Retry-After when retryAfter is positive.
func TooManyRequestsError(message string, retryAfter time.Duration) *AppError {
	e := NewAppError(CodeRateLimited, message, http.StatusTooManyRequests)
	e.RetryAfter = retryAfter
	return e
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError)
}
