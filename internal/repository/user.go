package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	role := user.Role
	if role == "" {
		role = model.UserRoleGuest
	}

	query := `
		CREATE user CONTENT {
			username: $username,
			hash: $hash,
			role: $role,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"username": user.Username,
		"hash":     user.Hash,
		"role":     string(role),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: username already exists", database.ErrDuplicate)
		}
		return err
	}

	data, err := firstRecord(result)
	if err != nil {
		return err
	}
	created := parseUser(data)

	user.ID = created.ID
	user.Role = created.Role
	user.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	// type::record would happily resolve ids of other tables
	if !strings.HasPrefix(id, "user:") || len(id) == len("user:") {
		return nil, nil
	}

	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT * FROM user WHERE username = $username LIMIT 1`
	vars := map[string]interface{}{"username": username}

	return r.getOne(ctx, query, vars)
}

// List returns all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	result, err := r.db.Query(ctx, `SELECT * FROM user ORDER BY username ASC`, nil)
	if err != nil {
		return nil, err
	}

	records := database.Records(result)
	users := make([]*model.User, 0, len(records))
	for _, rec := range records {
		if data, ok := rec.(map[string]interface{}); ok {
			users = append(users, parseUser(data))
		}
	}
	return users, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := asRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUser(data), nil
}

func parseUser(data map[string]interface{}) *model.User {
	return &model.User{
		ID:        convertSurrealID(data["id"]),
		Username:  getString(data, "username"),
		Hash:      getString(data, "hash"),
		Role:      model.UserRole(getString(data, "role")),
		CreatedOn: parseTime(data["created_on"]),
	}
}
