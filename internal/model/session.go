package model

import "time"

// Session binds a browser cookie to a logged-in user.
// Only the SHA-256 of the cookie token is kept server side.
type Session struct {
	TokenHash string
	UserID    string
	Role      UserRole
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session is no longer valid at now
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
