package service

import (
	"errors"
	"fmt"

	"github.com/forgo/shelf/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Catalog Errors =====
var (
	ErrBookNotFound          = errors.New("book not found")
	ErrDuplicateISBN         = errors.New("book with same isbn already exists")
	ErrBookHasBorrowers      = errors.New("book has active borrowers")
	ErrQuantityBelowBorrowed = errors.New("quantity cannot be lower than the number of borrowed copies")
)

// ===== Circulation Errors =====
var (
	ErrBookUnavailable  = errors.New("book is not available")
	ErrAlreadyBorrowed  = errors.New("book already borrowed by user")
	ErrNotBorrowed      = errors.New("book not borrowed by user")
	ErrConcurrentUpdate = errors.New("book changed concurrently")
)

// ===== Authentication Errors =====
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("not authorized to perform this action")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrInvalidRole      = errors.New("role must be admin or guest")
)

// ===== Validation Errors =====

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError carries per-field problems with a request
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Fields[0].Field, e.Fields[0].Message)
}

// Is lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(fields []model.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
