package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

func TestMapServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   model.ErrorCode
	}{
		{service.ErrBookNotFound, http.StatusNotFound, model.ErrCodeNotFound},
		{service.ErrUserNotFound, http.StatusNotFound, model.ErrCodeNotFound},
		{service.ErrDuplicateISBN, http.StatusBadRequest, model.ErrCodeAlreadyExists},
		{service.ErrUsernameTaken, http.StatusBadRequest, model.ErrCodeAlreadyExists},
		{service.ErrBookUnavailable, http.StatusBadRequest, model.ErrCodeInvalidState},
		{service.ErrAlreadyBorrowed, http.StatusBadRequest, model.ErrCodeInvalidState},
		{service.ErrNotBorrowed, http.StatusBadRequest, model.ErrCodeInvalidState},
		{service.ErrBookHasBorrowers, http.StatusBadRequest, model.ErrCodeInvalidState},
		{service.ErrQuantityBelowBorrowed, http.StatusBadRequest, model.ErrCodeInvalidState},
		{service.ErrInvalidPassword, http.StatusBadRequest, model.ErrCodeLoginFailed},
		{service.ErrPasswordTooShort, http.StatusBadRequest, model.ErrCodeValidation},
		{service.ErrNotAuthenticated, http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{service.ErrForbidden, http.StatusForbidden, model.ErrCodeForbidden},
		{service.ErrConcurrentUpdate, http.StatusConflict, model.ErrCodeConcurrent},
		{fmt.Errorf("borrow 111: %w", service.ErrConcurrentUpdate), http.StatusConflict, model.ErrCodeConcurrent},
		{errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			got := MapServiceError(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, got.Status)
			}
			if got.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, got.Code)
			}
		})
	}
}

func TestMapServiceError_Nil(t *testing.T) {
	t.Parallel()
	if MapServiceError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestMapServiceError_InternalHidesDetail(t *testing.T) {
	t.Parallel()
	got := MapServiceError(errors.New("pq: password authentication failed"))
	if got.Message != model.MsgUnknownError {
		t.Errorf("expected generic message, got %q", got.Message)
	}
}
