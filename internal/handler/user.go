package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/forgo/shelf/internal/middleware"
	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

// AuthService is the account and session surface the user handler needs
type AuthService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// CirculationService is the lending surface the user handler needs
type CirculationService interface {
	Borrow(ctx context.Context, isbn, userID string) (*model.Book, error)
	Return(ctx context.Context, isbn, userID string) (*model.Book, error)
	BorrowedBooks(ctx context.Context, userID string) ([]*model.Book, error)
}

var (
	_ AuthService        = (*service.AuthService)(nil)
	_ CirculationService = (*service.CirculationService)(nil)
)

// UserHandler handles account, session and circulation endpoints
type UserHandler struct {
	auth        AuthService
	circulation CirculationService
	cookie      middleware.Cookie
}

// UserHandlerConfig holds the user handler's dependencies
type UserHandlerConfig struct {
	Auth        AuthService
	Circulation CirculationService
	Cookie      middleware.Cookie
}

// NewUserHandler creates a new user handler
func NewUserHandler(cfg UserHandlerConfig) *UserHandler {
	return &UserHandler{
		auth:        cfg.Auth,
		circulation: cfg.Circulation,
		cookie:      cfg.Cookie,
	}
}

type userEnvelope struct {
	User *model.User `json:"user"`
}

type usersEnvelope struct {
	Users []*model.User `json:"users"`
}

// List handles GET /v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	WriteJSON(w, http.StatusOK, usersEnvelope{Users: users})
}

// Login handles POST /v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError(""))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if fields := req.Validate(); len(fields) > 0 {
		WriteError(w, model.NewValidationError(fields))
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginRequest{
		Username:      req.Username,
		Password:      req.Password,
		PreviousToken: h.cookie.Token(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.cookie.Set(w, result.Token, result.Session.ExpiresAt)
	WriteJSON(w, http.StatusOK, userEnvelope{User: result.User})
}

// Logout handles GET /v1/users/logout. It succeeds with or without a session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.cookie.Token(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cookie.Clear(w)
	WriteSuccess(w)
}

// Profile handles GET /v1/users/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, userEnvelope{User: user})
}

// BorrowedBooks handles GET /v1/users/borrowed-books
func (h *UserHandler) BorrowedBooks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError(""))
		return
	}

	books, err := h.circulation.BorrowedBooks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, booksEnvelope{Books: toBookResponses(books)})
}

// Borrow handles POST /v1/users/borrow
func (h *UserHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	h.circulate(w, r, h.circulation.Borrow)
}

// Return handles POST /v1/users/return
func (h *UserHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.circulate(w, r, h.circulation.Return)
}

// circulate runs a borrow or return for the session user
func (h *UserHandler) circulate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, isbn, userID string) (*model.Book, error)) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError(""))
		return
	}

	var req model.CirculationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError(""))
		return
	}
	if req.UserID != "" && req.UserID != userID {
		WriteError(w, model.NewForbiddenError(model.MsgNotOwnIdentity))
		return
	}
	isbn := strings.TrimSpace(req.ISBN)
	if isbn == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "isbn", Message: "isbn is required"}}))
		return
	}

	book, err := op(r.Context(), isbn, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, bookEnvelope{Book: toBookResponse(book)})
}
