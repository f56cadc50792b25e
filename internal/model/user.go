package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleAdmin UserRole = "admin" // Manages the catalog
	UserRoleGuest UserRole = "guest" // Borrows and returns books
)

// IsValid returns true if r is a known role
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleGuest
}

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Hash      string    `json:"-"` // Never expose password hash
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"createdOn"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// LoginRequest represents the credentials posted to the login endpoint
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid
func (r *LoginRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Username == "" {
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	}
	return errors
}

// CirculationRequest is the body of a borrow or return call.
// UserID is optional and must match the session user when present.
type CirculationRequest struct {
	ISBN   string `json:"isbn"`
	UserID string `json:"userId,omitempty"`
}
