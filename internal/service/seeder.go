package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/forgo/shelf/internal/model"
)

// SeedUser describes an account the seeder makes sure exists
type SeedUser struct {
	Username string
	Password string
	Role     model.UserRole
}

// DefaultSeedUsers returns the stock admin and guest accounts
func DefaultSeedUsers(adminPassword, guestPassword string) []SeedUser {
	return []SeedUser{
		{Username: "admin", Password: adminPassword, Role: model.UserRoleAdmin},
		{Username: "guest", Password: guestPassword, Role: model.UserRoleGuest},
	}
}

// SeederService creates missing default accounts at start-up
type SeederService struct {
	auth     *AuthService
	userRepo UserRepository
}

// NewSeederService creates a new seeder service
func NewSeederService(auth *AuthService, userRepo UserRepository) *SeederService {
	return &SeederService{auth: auth, userRepo: userRepo}
}

// SeedUsers creates each account that does not exist yet. Existing accounts
// are left untouched, including their passwords.
func (s *SeederService) SeedUsers(ctx context.Context, users []SeedUser) (int, error) {
	created := 0
	for _, u := range users {
		existing, err := s.userRepo.GetByUsername(ctx, u.Username)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		_, err = s.auth.CreateUser(ctx, CreateUserRequest{
			Username: u.Username,
			Password: u.Password,
			Role:     u.Role,
		})
		if errors.Is(err, ErrUsernameTaken) {
			// another instance seeded it first
			continue
		}
		if err != nil {
			return created, err
		}

		slog.Info("seeded user", "username", u.Username, "role", u.Role)
		created++
	}
	return created, nil
}
