package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/shelf/internal/middleware"
	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

var errEmptyBody = errors.New("empty request body")

// Client-facing messages for domain failures
const (
	msgBookNotFound      = "Book not found"
	msgBookUnavailable   = "Book is not available"
	msgUserNotFound      = "User not found"
	msgAlreadyBorrowed   = "You've already borrowed this book"
	msgNotBorrowed       = "You need to borrow this book first!"
	msgDuplicateISBN     = "Book with same ISBN already found"
	msgInvalidPassword   = "Invalid password"
	msgHasBorrowers      = "Book has active borrowers"
	msgQuantityBelowHeld = "Quantity cannot be lower than the number of borrowed copies"
	msgUsernameTaken     = "Username already exists"
)

// MapServiceError converts a service error to an API error.
// Unknown errors become the generic 500.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	var verr *service.ValidationError
	switch {
	// ===== Validation → 400 =====
	case errors.As(err, &verr):
		return model.NewValidationError(verr.Fields)
	case errors.Is(err, service.ErrUsernameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "username", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidRole):
		return model.NewValidationError([]model.FieldError{{Field: "role", Message: err.Error()}})

	// ===== Authentication → 401 / 400 =====
	case errors.Is(err, service.ErrNotAuthenticated):
		return model.NewUnauthorizedError("")
	case errors.Is(err, service.ErrInvalidPassword):
		return model.NewLoginFailedError(msgInvalidPassword)

	// ===== Authorization → 403 =====
	case errors.Is(err, service.ErrForbidden):
		return model.NewForbiddenError("")

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrBookNotFound):
		return model.NewNotFoundError(msgBookNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError(msgUserNotFound)

	// ===== Conflicts → 400 =====
	case errors.Is(err, service.ErrDuplicateISBN):
		return model.NewConflictError(msgDuplicateISBN)
	case errors.Is(err, service.ErrUsernameTaken):
		return model.NewConflictError(msgUsernameTaken)

	// ===== State → 400 =====
	case errors.Is(err, service.ErrBookUnavailable):
		return model.NewInvalidStateError(msgBookUnavailable)
	case errors.Is(err, service.ErrAlreadyBorrowed):
		return model.NewInvalidStateError(msgAlreadyBorrowed)
	case errors.Is(err, service.ErrNotBorrowed):
		return model.NewInvalidStateError(msgNotBorrowed)
	case errors.Is(err, service.ErrBookHasBorrowers):
		return model.NewInvalidStateError(msgHasBorrowers)
	case errors.Is(err, service.ErrQuantityBelowBorrowed):
		return model.NewInvalidStateError(msgQuantityBelowHeld)

	// ===== Lost races → 409 =====
	case errors.Is(err, service.ErrConcurrentUpdate):
		return model.NewConcurrentUpdateError()

	default:
		return model.NewInternalError()
	}
}

// writeServiceError maps err and writes it, logging anything that ends up
// as a 500
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := MapServiceError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, apiErr)
}
