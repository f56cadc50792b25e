package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	defaultBcryptCost = 12

	// Password constraints. bcrypt ignores input past 72 bytes.
	minPasswordLength = 4
	maxPasswordLength = 72
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// SessionStore defines the interface for session storage
type SessionStore interface {
	Create(ctx context.Context, user *model.User) (string, *model.Session, error)
	Get(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// AuthService handles login sessions and user accounts
type AuthService struct {
	userRepo   UserRepository
	sessions   SessionStore
	bcryptCost int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo   UserRepository
	Sessions   SessionStore
	BcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	return &AuthService{
		userRepo:   cfg.UserRepo,
		sessions:   cfg.Sessions,
		bcryptCost: cost,
	}
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string
	Password string
	// PreviousToken is the session token the client already holds, if any.
	// It is revoked on successful login.
	PreviousToken string
}

// LoginResult represents a successful login
type LoginResult struct {
	User    *model.User
	Token   string
	Session *model.Session
}

// Login verifies credentials and opens a new session
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !checkPassword(req.Password, user.Hash) {
		return nil, ErrInvalidPassword
	}

	if req.PreviousToken != "" {
		_ = s.sessions.Delete(ctx, req.PreviousToken)
	}

	token, sess, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token, Session: sess}, nil
}

// Logout ends the session for token. It succeeds without a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a token to its live session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

// CurrentUser returns the user bound to the session
func (s *AuthService) CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error) {
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every account
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUserRequest represents a new account
type CreateUserRequest struct {
	Username string
	Password string
	Role     model.UserRole
}

// CreateUser registers an account with a bcrypt-hashed password
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = model.UserRoleGuest
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Hash:     hash,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// SweepSessions drops expired sessions
func (s *AuthService) SweepSessions(ctx context.Context) (int, error) {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
