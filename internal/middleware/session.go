package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/forgo/shelf/internal/model"
)

// DefaultCookieName is the session cookie used when none is configured
const DefaultCookieName = "shelf_session"

// Authenticator resolves a session token to its live session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// Cookie describes how the session cookie is written
type Cookie struct {
	Name   string
	Secure bool
}

func (c Cookie) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

// Token returns the session token carried by r, or ""
func (c Cookie) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set hands the session token to the client until expires
func (c Cookie) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie on the client
func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session attaches the caller's session to the request context when the
// cookie names a live one. Requests without a session pass through.
func Session(auth Authenticator, cookie Cookie) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookie.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that carry no live session with 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			model.NewUnauthorizedError("").WriteJSON(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests without a session (401) or whose session
// role differs from role (403)
func RequireRole(role model.UserRole) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil {
				model.NewUnauthorizedError("").WriteJSON(w)
				return
			}
			if sess.Role != role {
				slog.WarnContext(r.Context(), "role check failed",
					slog.String("user_id", sess.UserID),
					slog.String("role", string(sess.Role)),
					slog.String("required", string(role)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				model.NewForbiddenError("").WriteJSON(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *model.Session {
	if sess, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return sess
	}
	return nil
}

// GetUserID extracts the session user ID from context
func GetUserID(ctx context.Context) string {
	if sess := GetSession(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}
