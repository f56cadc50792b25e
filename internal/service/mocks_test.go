package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

// Mock implementations

// mockBookRepo is an in-memory BookRepository with the same guard
// semantics as the real ones
type mockBookRepo struct {
	mu     sync.Mutex
	books  map[string]*model.Book
	nextID int

	getErr error
	addErr error
	// beforeAdd runs before the AddBorrower guard is evaluated,
	// to simulate a concurrent writer
	beforeAdd func()
	addCalls  int
}

func newMockBookRepo(books ...*model.Book) *mockBookRepo {
	m := &mockBookRepo{books: make(map[string]*model.Book)}
	for _, b := range books {
		if b.BorrowedBy == nil {
			b.BorrowedBy = []string{}
		}
		m.nextID++
		b.ID = fmt.Sprintf("book:%d", m.nextID)
		m.books[b.ISBN] = b
	}
	return m
}

func clone(b *model.Book) *model.Book {
	c := *b
	c.BorrowedBy = slices.Clone(b.BorrowedBy)
	return &c
}

func (m *mockBookRepo) Create(ctx context.Context, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[book.ISBN]; ok {
		return fmt.Errorf("%w: isbn already exists", database.ErrDuplicate)
	}
	m.nextID++
	book.ID = fmt.Sprintf("book:%d", m.nextID)
	book.BorrowedBy = []string{}
	m.books[book.ISBN] = clone(book)
	return nil
}

func (m *mockBookRepo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if b, ok := m.books[isbn]; ok {
		return clone(b), nil
	}
	return nil, nil
}

func (m *mockBookRepo) List(ctx context.Context) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockBookRepo) ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Book
	for _, b := range m.books {
		if b.HasBorrower(userID) {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (m *mockBookRepo) Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return nil, nil
	}
	if req.Quantity != nil && *req.Quantity < len(b.BorrowedBy) {
		return nil, nil
	}
	req.Apply(b)
	return clone(b), nil
}

func (m *mockBookRepo) Delete(ctx context.Context, isbn string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok || len(b.BorrowedBy) > 0 {
		return false, nil
	}
	delete(m.books, isbn)
	return true, nil
}

func (m *mockBookRepo) AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	if m.beforeAdd != nil {
		m.beforeAdd()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return nil, m.addErr
	}
	b, ok := m.books[isbn]
	if !ok || !b.IsAvailable() || b.HasBorrower(userID) {
		return nil, nil
	}
	b.BorrowedBy = append(b.BorrowedBy, userID)
	return clone(b), nil
}

func (m *mockBookRepo) RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok || !b.HasBorrower(userID) {
		return nil, nil
	}
	b.BorrowedBy = slices.DeleteFunc(b.BorrowedBy, func(id string) bool { return id == userID })
	return clone(b), nil
}

// borrowers returns the stored borrower list without going through the guard
func (m *mockBookRepo) borrowers(isbn string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[isbn]; ok {
		return slices.Clone(b.BorrowedBy)
	}
	return nil
}

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	createErr error
	getErr    error
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username already exists", database.ErrDuplicate)
		}
	}
	user.ID = "user:" + user.Username
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}
