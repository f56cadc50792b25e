// Package session keeps login sessions in process memory.
//
// Clients hold an opaque random token in a cookie. The store only keeps the
// SHA-256 of that token, so a dump of the map cannot be replayed. Sessions
// expire a fixed TTL after creation; expired entries are dropped on read and
// by a periodic sweep.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forgo/shelf/internal/model"
)

// DefaultTTL is the lifetime of a session when none is configured
const DefaultTTL = 24 * time.Hour

// tokenBytes is the amount of randomness in a session token
const tokenBytes = 32

// ErrEmptyToken is returned when an operation needs a token and got none
var ErrEmptyToken = errors.New("empty session token")

// Store is an in-memory session store safe for concurrent use
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store whose sessions live for ttl
func NewStore(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the session lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for user and returns the token to hand to the client
func (s *Store) Create(_ context.Context, user *model.User) (string, *model.Session, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := s.now()
	sess := &model.Session{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.TokenHash] = sess
	s.mu.Unlock()

	copied := *sess
	return token, &copied, nil
}

// Get returns the live session for token, or nil if there is none
func (s *Store) Get(_ context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	key := hashToken(token)

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if sess.IsExpired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
		return nil, nil
	}

	copied := *sess
	return &copied, nil
}

// Delete ends the session for token. Unknown tokens are ignored.
func (s *Store) Delete(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	delete(s.sessions, hashToken(token))
	s.mu.Unlock()
	return nil
}

// DeleteExpired drops every expired session and returns how many it removed
func (s *Store) DeleteExpired(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
