// Package handler provides the HTTP endpoints of the shelf API.
//
// Each handler struct wraps the service interfaces it needs, declared here
// so tests can substitute hand-written mocks:
//
//   - BookHandler: catalog reads and admin writes under /v1/books
//   - UserHandler: login, logout, profile, borrow and return under /v1/users
//   - HealthHandler: storage liveness at /v1/health
//
// # Response Format
//
// Successful bodies wrap their payload in a named field ({"book":…},
// {"books":[…]}, {"user":…}, {"users":[…]}, {"success":true}). Books
// always carry the derived availableQuantity.
//
// Failures are written as model.APIError: {"error":"…","code":N}. Service
// errors are translated in one place, MapServiceError; anything it does not
// recognize becomes a logged 500 with the generic message.
//
// # Identity
//
// The acting user of every /users call comes from the session attached by
// middleware.Session. A userId in a borrow or return body is accepted only
// when it names the session user.
package handler
