package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

type userRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Hash      string    `db:"hash"`
	Role      string    `db:"role"`
	CreatedOn time.Time `db:"created_on"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:        r.ID,
		Username:  r.Username,
		Hash:      r.Hash,
		Role:      model.UserRole(r.Role),
		CreatedOn: r.CreatedOn,
	}
}

// UserRepository handles user data access
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.UserRoleGuest
	}
	row := userRow{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Hash:      user.Hash,
		Role:      string(user.Role),
		CreatedOn: time.Now().UTC(),
	}

	query := r.db.Rebind(`INSERT INTO users (id, username, hash, role, created_on) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, row.ID, row.Username, row.Hash, row.Role, row.CreatedOn); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username already exists", database.ErrDuplicate)
		}
		return fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	user.ID = row.ID
	user.CreatedOn = row.CreatedOn
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE username = ?`, username)
}

// List returns all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}
	return row.toModel(), nil
}
