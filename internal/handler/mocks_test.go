package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgo/shelf/internal/middleware"
	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

// ============================================================================
// Mock Services
// ============================================================================

type mockCatalogService struct {
	listFunc   func(ctx context.Context) ([]*model.Book, error)
	getFunc    func(ctx context.Context, isbn string) (*model.Book, error)
	createFunc func(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	updateFunc func(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error)
	deleteFunc func(ctx context.Context, isbn string) error
}

func (m *mockCatalogService) ListBooks(ctx context.Context) ([]*model.Book, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) GetBook(ctx context.Context, isbn string) (*model.Book, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, isbn)
	}
	return nil, service.ErrBookNotFound
}

func (m *mockCatalogService) CreateBook(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockCatalogService) UpdateBook(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, isbn, req)
	}
	return nil, nil
}

func (m *mockCatalogService) DeleteBook(ctx context.Context, isbn string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, isbn)
	}
	return nil
}

type mockAuthService struct {
	loginFunc       func(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	logoutFunc      func(ctx context.Context, token string) error
	currentUserFunc func(ctx context.Context, sess *model.Session) (*model.User, error)
	listUsersFunc   func(ctx context.Context) ([]*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error) {
	if m.currentUserFunc != nil {
		return m.currentUserFunc(ctx, sess)
	}
	return nil, nil
}

func (m *mockAuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return nil, nil
}

type mockCirculationService struct {
	borrowFunc   func(ctx context.Context, isbn, userID string) (*model.Book, error)
	returnFunc   func(ctx context.Context, isbn, userID string) (*model.Book, error)
	borrowedFunc func(ctx context.Context, userID string) ([]*model.Book, error)
}

func (m *mockCirculationService) Borrow(ctx context.Context, isbn, userID string) (*model.Book, error) {
	if m.borrowFunc != nil {
		return m.borrowFunc(ctx, isbn, userID)
	}
	return nil, nil
}

func (m *mockCirculationService) Return(ctx context.Context, isbn, userID string) (*model.Book, error) {
	if m.returnFunc != nil {
		return m.returnFunc(ctx, isbn, userID)
	}
	return nil, nil
}

func (m *mockCirculationService) BorrowedBooks(ctx context.Context, userID string) ([]*model.Book, error) {
	if m.borrowedFunc != nil {
		return m.borrowedFunc(ctx, userID)
	}
	return nil, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestBook(isbn string, quantity int, borrowers ...string) *model.Book {
	if borrowers == nil {
		borrowers = []string{}
	}
	return &model.Book{
		ID:         "book:" + isbn,
		ISBN:       isbn,
		Name:       "Dune",
		Category:   "Fiction",
		Price:      9.5,
		Quantity:   quantity,
		BorrowedBy: borrowers,
	}
}

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, userID string, role model.UserRole) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.SessionKey, &model.Session{UserID: userID, Role: role})
	return req.WithContext(ctx)
}

func parseErrorResponse(t *testing.T, body []byte) *model.APIError {
	t.Helper()
	var apiErr model.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &apiErr
}

// bookBody is the decoded form of {"book":…}
type bookBody struct {
	Book struct {
		ISBN              string   `json:"isbn"`
		Quantity          int      `json:"quantity"`
		BorrowedBy        []string `json:"borrowedBy"`
		AvailableQuantity int      `json:"availableQuantity"`
	} `json:"book"`
}

func parseBook(t *testing.T, body []byte) bookBody {
	t.Helper()
	var b bookBody
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatalf("failed to parse book response: %v", err)
	}
	return b
}
