// Package middleware provides HTTP middleware for the shelf API.
//
// # Available Middleware
//
//   - RequestID: assigns X-Request-ID and stores it in the context
//   - Logger: one structured log line per request
//   - Recovery: converts panics into the generic 500 body
//   - CORS: credentialed cross-origin access for the front end
//   - Compress: gzip responses when the client accepts it
//   - Session: resolves the session cookie into a *model.Session
//   - RequireAuth, RequireRole: gate routes on the resolved session
//   - RateLimit: per-address attempt limit, used on login
//
// # Sessions
//
// Session never rejects a request; it only attaches what the cookie proves.
// Routes that need an identity add RequireAuth or RequireRole:
//
//	mux.Handle("POST /v1/users/borrow", middleware.RequireAuth(http.HandlerFunc(h.Borrow)))
//
// Handlers read the caller with GetSession(ctx) or GetUserID(ctx).
package middleware
