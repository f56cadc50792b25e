package app

import (
	"net/http"

	"github.com/forgo/shelf/internal/handler"
	"github.com/forgo/shelf/internal/middleware"
	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

// RouterConfig holds what the HTTP surface is assembled from
type RouterConfig struct {
	Auth                *service.AuthService
	Catalog             *service.CatalogService
	Circulation         *service.CirculationService
	Stores              *Stores
	Cookie              middleware.Cookie
	AllowedOrigins      []string
	CatalogRequireAdmin bool
	LoginLimiter        *middleware.RateLimiter
}

// NewRouter registers every /v1 route and wraps the mux in the global
// middleware chain
func NewRouter(cfg RouterConfig) http.Handler {
	bookHandler := handler.NewBookHandler(cfg.Catalog)
	userHandler := handler.NewUserHandler(handler.UserHandlerConfig{
		Auth:        cfg.Auth,
		Circulation: cfg.Circulation,
		Cookie:      cfg.Cookie,
	})
	healthHandler := handler.NewHealthHandler(cfg.Stores.Pinger)

	requireAuth := middleware.RequireAuth
	catalogWrite := passThrough
	if cfg.CatalogRequireAdmin {
		catalogWrite = middleware.RequireRole(model.UserRoleAdmin)
	}
	login := passThrough
	if cfg.LoginLimiter != nil {
		login = middleware.RateLimit(cfg.LoginLimiter)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", healthHandler.Check)

	// Catalog
	mux.HandleFunc("GET /v1/books", bookHandler.List)
	mux.HandleFunc("GET /v1/books/{isbn}", bookHandler.Get)
	mux.Handle("POST /v1/books", catalogWrite(http.HandlerFunc(bookHandler.Create)))
	mux.Handle("PATCH /v1/books/{isbn}", catalogWrite(http.HandlerFunc(bookHandler.Update)))
	mux.Handle("DELETE /v1/books/{isbn}", catalogWrite(http.HandlerFunc(bookHandler.Delete)))

	// Users and sessions
	mux.HandleFunc("GET /v1/users", userHandler.List)
	mux.Handle("POST /v1/users/login", login(http.HandlerFunc(userHandler.Login)))
	mux.HandleFunc("GET /v1/users/logout", userHandler.Logout)
	mux.Handle("GET /v1/users/profile", requireAuth(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("GET /v1/users/borrowed-books", requireAuth(http.HandlerFunc(userHandler.BorrowedBooks)))

	// Circulation
	mux.Handle("POST /v1/users/borrow", requireAuth(http.HandlerFunc(userHandler.Borrow)))
	mux.Handle("POST /v1/users/return", requireAuth(http.HandlerFunc(userHandler.Return)))

	mux.HandleFunc("/", handler.NotFound)

	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Session(cfg.Auth, cfg.Cookie),
		middleware.Compress,
	)
}

func passThrough(next http.Handler) http.Handler { return next }
