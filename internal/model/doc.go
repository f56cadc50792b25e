// Package model defines domain entities and data structures for the Shelf API.
//
// The model package contains the struct definitions for books, users and
// sessions, plus the JSON error body returned by every failing endpoint.
// Models are shared by all layers of the application.
//
// # Domain Entities
//
//   - Book: a catalog title with a number of owned copies and the set of
//     users currently holding one
//   - User: an account with a username, a bcrypt credential and a role
//   - Session: a server-held binding between a cookie token and a user
//
// # Derived Values
//
// A book's available quantity is never stored. It is computed on read:
//
//	available := book.AvailableQuantity() // Quantity - len(BorrowedBy)
//
// # Error Types
//
// Error responses are defined in errors.go:
//
//	type APIError struct {
//	    Status  int       `json:"-"`
//	    Message string    `json:"error"`
//	    Code    ErrorCode `json:"code,omitempty"`
//	}
package model
