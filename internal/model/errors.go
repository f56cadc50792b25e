package model

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Authentication errors (1xxx)
	ErrCodeUnauthorized ErrorCode = 1001
	ErrCodeLoginFailed  ErrorCode = 1004

	// Authorization errors (2xxx)
	ErrCodeForbidden ErrorCode = 2001

	// Resource errors (3xxx)
	ErrCodeNotFound      ErrorCode = 3001
	ErrCodeAlreadyExists ErrorCode = 3002
	ErrCodeConcurrent    ErrorCode = 3003
	ErrCodeInvalidState  ErrorCode = 3004

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4029

	// Internal errors (5xxx)
	ErrCodeInternal    ErrorCode = 5001
	ErrCodeUnavailable ErrorCode = 5003
)

// Messages shown to clients for failures that carry no domain detail
const (
	MsgRouteNotFound  = "Route not found"
	MsgUnknownError   = "Unknown server error"
	MsgInvalidBody    = "Invalid request body"
	MsgNotAuthorized  = "Not authorized"
	MsgForbidden      = "Forbidden"
	MsgTooManyLogins  = "Too many requests"
	MsgNotOwnIdentity = "You can only borrow or return books for yourself"
	MsgConcurrent     = "Book was changed by another request, try again"
)

// APIError is the JSON body of every failed request.
// Status selects the HTTP status and is not serialized.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"error"`
	Code    ErrorCode    `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// WriteJSON writes the error as JSON response
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// Common error constructors

func NewUnauthorizedError(message string) *APIError {
	if message == "" {
		message = MsgNotAuthorized
	}
	return &APIError{Status: http.StatusUnauthorized, Message: message, Code: ErrCodeUnauthorized}
}

func NewForbiddenError(message string) *APIError {
	if message == "" {
		message = MsgForbidden
	}
	return &APIError{Status: http.StatusForbidden, Message: message, Code: ErrCodeForbidden}
}

// NewNotFoundError takes the client-facing message, e.g. "Book not found"
func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message, Code: ErrCodeNotFound}
}

func NewValidationError(errors []FieldError) *APIError {
	message := "One or more fields failed validation"
	if len(errors) > 0 {
		message = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
		if len(errors) > 1 {
			message = fmt.Sprintf("%s (and %d more errors)", message, len(errors)-1)
		}
	}
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Code:    ErrCodeValidation,
		Errors:  errors,
	}
}

// NewConflictError reports a unique-key clash. Clients expect 400 here.
func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Code: ErrCodeAlreadyExists}
}

// NewInvalidStateError reports a request the current record state forbids
func NewInvalidStateError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Code: ErrCodeInvalidState}
}

// NewConcurrentUpdateError reports a guarded write that kept losing races
func NewConcurrentUpdateError() *APIError {
	return &APIError{Status: http.StatusConflict, Message: MsgConcurrent, Code: ErrCodeConcurrent}
}

func NewLoginFailedError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Code: ErrCodeLoginFailed}
}

func NewBadRequestError(message string) *APIError {
	if message == "" {
		message = MsgInvalidBody
	}
	return &APIError{Status: http.StatusBadRequest, Message: message, Code: ErrCodeInvalidInput}
}

func NewInternalError() *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: MsgUnknownError, Code: ErrCodeInternal}
}

func NewRouteNotFoundError() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: MsgRouteNotFound, Code: ErrCodeNotFound}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Message: message, Code: ErrCodeUnavailable}
}

func NewRateLimitError(retryAfter int) *APIError {
	return &APIError{
		Status:  http.StatusTooManyRequests,
		Message: fmt.Sprintf("%s. Retry after %d seconds", MsgTooManyLogins, retryAfter),
		Code:    ErrCodeRateLimited,
	}
}
