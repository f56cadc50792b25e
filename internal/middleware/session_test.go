package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/shelf/internal/model"
)

// mockAuthenticator resolves tokens from a fixed map
type mockAuthenticator struct {
	sessions map[string]*model.Session
	err      error
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	sess, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("not authenticated")
	}
	return sess, nil
}

var (
	adminSession = &model.Session{UserID: "user:admin", Role: model.UserRoleAdmin}
	guestSession = &model.Session{UserID: "user:guest", Role: model.UserRoleGuest}
)

func newAuthenticator() *mockAuthenticator {
	return &mockAuthenticator{sessions: map[string]*model.Session{
		"admin-token": adminSession,
		"guest-token": guestSession,
	}}
}

func requestWithCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/users/profile", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
	}
	return req
}

// ============================================================================
// Session Tests
// ============================================================================

func TestSession_ValidCookie_AttachesSession(t *testing.T) {
	t.Parallel()

	handler := &captureHandler{}
	Session(newAuthenticator(), Cookie{})(handler).ServeHTTP(httptest.NewRecorder(), requestWithCookie("guest-token"))

	if !handler.called {
		t.Fatal("expected handler to be called")
	}
	if got := GetUserID(handler.ctx); got != "user:guest" {
		t.Errorf("expected user:guest in context, got %q", got)
	}
}

func TestSession_PassesThroughWithoutSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		auth  *mockAuthenticator
	}{
		{"no cookie", "", newAuthenticator()},
		{"unknown token", "stale", newAuthenticator()},
		{"store error", "guest-token", &mockAuthenticator{err: errors.New("down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := &captureHandler{}
			Session(tt.auth, Cookie{})(handler).ServeHTTP(httptest.NewRecorder(), requestWithCookie(tt.token))

			if !handler.called {
				t.Fatal("expected handler to be called")
			}
			if GetSession(handler.ctx) != nil {
				t.Error("expected no session in context")
			}
		})
	}
}

func TestSession_CustomCookieName(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "admin-token"})
	handler := &captureHandler{}

	Session(newAuthenticator(), Cookie{Name: "sid"})(handler).ServeHTTP(httptest.NewRecorder(), req)

	if GetSession(handler.ctx) != adminSession {
		t.Error("expected session resolved from custom cookie name")
	}
}

// ============================================================================
// RequireAuth / RequireRole Tests
// ============================================================================

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no session", "", http.StatusUnauthorized},
		{"guest", "guest-token", http.StatusOK},
		{"admin", "admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := Chain(&captureHandler{}, Session(newAuthenticator(), Cookie{}), RequireAuth)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, requestWithCookie(tt.token))

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"no session", "", http.StatusUnauthorized, model.MsgNotAuthorized},
		{"guest", "guest-token", http.StatusForbidden, model.MsgForbidden},
		{"admin", "admin-token", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := Chain(&captureHandler{}, Session(newAuthenticator(), Cookie{}), RequireRole(model.UserRoleAdmin))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, requestWithCookie(tt.token))

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("expected %q in body, got %q", tt.wantBody, rr.Body.String())
			}
		})
	}
}

// ============================================================================
// Cookie Tests
// ============================================================================

func TestCookie_SetAndClear(t *testing.T) {
	t.Parallel()

	c := Cookie{Secure: true}
	rr := httptest.NewRecorder()
	c.Set(rr, "tok", time.Now().Add(24*time.Hour))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	got := cookies[0]
	if got.Name != DefaultCookieName || got.Value != "tok" {
		t.Errorf("unexpected cookie %s=%s", got.Name, got.Value)
	}
	if !got.HttpOnly || !got.Secure || got.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected HttpOnly, Secure, SameSite=Lax, got %+v", got)
	}
	if got.MaxAge <= 0 {
		t.Errorf("expected positive MaxAge, got %d", got.MaxAge)
	}

	rr = httptest.NewRecorder()
	c.Clear(rr)
	cleared := rr.Result().Cookies()[0]
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("expected expired empty cookie, got %+v", cleared)
	}
}
