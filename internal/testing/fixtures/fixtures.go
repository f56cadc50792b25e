// Package fixtures provides test data factories for repository and e2e tests.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories write through the same
// repository the test exercises, so they work on every storage backend.
//
// Usage:
//
//	f := fixtures.New(books, users)
//	user := f.CreateUser(t)
//	book := f.CreateBook(t, fixtures.WithQuantity(1))
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/shelf/internal/model"
)

// BookCreator is satisfied by every book repository
type BookCreator interface {
	Create(ctx context.Context, book *model.Book) error
}

// UserCreator is satisfied by every user repository
type UserCreator interface {
	Create(ctx context.Context, user *model.User) error
}

// Factory creates test entities in the database
type Factory struct {
	books BookCreator
	users UserCreator
}

// New creates a new fixture factory
func New(books BookCreator, users UserCreator) *Factory {
	return &Factory{books: books, users: users}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Username string
	Password string
	Role     model.UserRole
}

// WithUsername sets the username
func WithUsername(username string) func(*UserOpts) {
	return func(o *UserOpts) { o.Username = username }
}

// WithPassword sets the plaintext password hashed into the user
func WithPassword(password string) func(*UserOpts) {
	return func(o *UserOpts) { o.Password = password }
}

// AsAdmin gives the user the admin role
func AsAdmin() func(*UserOpts) {
	return func(o *UserOpts) { o.Role = model.UserRoleAdmin }
}

// CreateUser creates a guest user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Username: fmt.Sprintf("user_%s", randomID()),
		Password: "testpass123",
		Role:     model.UserRoleGuest,
	}
	for _, fn := range opts {
		fn(o)
	}

	// MinCost keeps fixture creation fast
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	user := &model.User{
		Username: o.Username,
		Hash:     string(hash),
		Role:     o.Role,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.users.Create(ctx, user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// ============================================================================
// Book Fixtures
// ============================================================================

// BookOpts customizes book creation
type BookOpts struct {
	ISBN     string
	Name     string
	Category string
	Price    float64
	Quantity int
}

// WithISBN sets the ISBN
func WithISBN(isbn string) func(*BookOpts) {
	return func(o *BookOpts) { o.ISBN = isbn }
}

// WithName sets the title
func WithName(name string) func(*BookOpts) {
	return func(o *BookOpts) { o.Name = name }
}

// WithQuantity sets the number of owned copies
func WithQuantity(n int) func(*BookOpts) {
	return func(o *BookOpts) { o.Quantity = n }
}

// CreateBook creates a book with two copies and no borrowers by default
func (f *Factory) CreateBook(t *testing.T, opts ...func(*BookOpts)) *model.Book {
	t.Helper()

	o := &BookOpts{
		ISBN:     "isbn-" + randomID(),
		Name:     "Book " + randomID(),
		Category: "Fiction",
		Price:    12.5,
		Quantity: 2,
	}
	for _, fn := range opts {
		fn(o)
	}

	book := &model.Book{
		UUID:     uuid.NewString(),
		ISBN:     o.ISBN,
		Name:     o.Name,
		Category: o.Category,
		Price:    o.Price,
		Quantity: o.Quantity,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.books.Create(ctx, book); err != nil {
		t.Fatalf("fixtures: failed to create book: %v", err)
	}
	return book
}
