package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/shelf/internal/model"
)

func ptr[T any](v T) *T { return &v }

func validCreate(isbn string) *model.CreateBookRequest {
	return &model.CreateBookRequest{
		Name:     "  The Hobbit ",
		ISBN:     isbn,
		Category: "Fantasy",
		Price:    12.5,
		Quantity: 3,
	}
}

// ============================================================================
// CreateBook Tests
// ============================================================================

func TestCreateBook_Success(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo()})

	book, err := svc.CreateBook(context.Background(), validCreate("978-0"))
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", book.Name)
	assert.NotEmpty(t, book.UUID)
	assert.Empty(t, book.BorrowedBy)
	assert.Equal(t, 3, book.AvailableQuantity())
}

func TestCreateBook_DuplicateISBNLeavesOriginal(t *testing.T) {
	t.Parallel()
	repo := newMockBookRepo(book111(1, "u1"))
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: repo})

	_, err := svc.CreateBook(context.Background(), validCreate("111"))
	require.ErrorIs(t, err, ErrDuplicateISBN)

	original, err := svc.GetBook(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "Dune", original.Name)
	assert.Equal(t, 1, original.Quantity)
	assert.Equal(t, []string{"u1"}, original.BorrowedBy)
}

func TestCreateBook_Validation(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo()})

	req := validCreate("")
	req.Quantity = -1
	_, err := svc.CreateBook(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
}

// ============================================================================
// Read Tests
// ============================================================================

func TestGetBook_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo()})

	_, err := svc.GetBook(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestGetBook_StoreError(t *testing.T) {
	t.Parallel()
	repo := newMockBookRepo()
	repo.getErr = errors.New("boom")
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: repo})

	_, err := svc.GetBook(context.Background(), "111")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	t.Parallel()
	repo := newMockBookRepo(book111(1), &model.Book{ISBN: "222", Name: "Emma", Quantity: 2})
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: repo})

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Name)
}

// ============================================================================
// UpdateBook Tests
// ============================================================================

func TestUpdateBook_Fields(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo(book111(2, "u1"))})

	book, err := svc.UpdateBook(context.Background(), "111", &model.UpdateBookRequest{
		Name:  ptr(" Dune Messiah "),
		Price: ptr(9.99),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Name)
	assert.Equal(t, 9.99, book.Price)
	assert.Equal(t, "Fiction", book.Category)
	assert.Equal(t, []string{"u1"}, book.BorrowedBy)
}

func TestUpdateBook_QuantityGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity int
		wantErr  error
	}{
		{"below borrowers", 1, ErrQuantityBelowBorrowed},
		{"equal to borrowers", 2, nil},
		{"above borrowers", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newMockBookRepo(book111(3, "u1", "u2"))
			svc := NewCatalogService(CatalogServiceConfig{BookRepo: repo})

			book, err := svc.UpdateBook(context.Background(), "111", &model.UpdateBookRequest{Quantity: ptr(tt.quantity)})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				current, _ := svc.GetBook(context.Background(), "111")
				assert.Equal(t, 3, current.Quantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quantity, book.Quantity)
		})
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo()})

	_, err := svc.UpdateBook(context.Background(), "111", &model.UpdateBookRequest{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook_NegativePrice(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo(book111(1))})

	_, err := svc.UpdateBook(context.Background(), "111", &model.UpdateBookRequest{Price: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrValidation)
}

// ============================================================================
// DeleteBook Tests
// ============================================================================

func TestDeleteBook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		book    *model.Book
		wantErr error
	}{
		{"no borrowers", book111(1), nil},
		{"has borrowers", book111(1, "u1"), ErrBookHasBorrowers},
		{"missing", nil, ErrBookNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newMockBookRepo()
			if tt.book != nil {
				repo = newMockBookRepo(tt.book)
			}
			svc := NewCatalogService(CatalogServiceConfig{BookRepo: repo})

			err := svc.DeleteBook(context.Background(), "111")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			_, err = svc.GetBook(context.Background(), "111")
			assert.ErrorIs(t, err, ErrBookNotFound)
		})
	}
}

// ============================================================================
// ImportBooks Tests
// ============================================================================

func TestImportBooks(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(CatalogServiceConfig{BookRepo: newMockBookRepo(book111(1))})

	result, err := svc.ImportBooks(context.Background(), []model.CreateBookRequest{
		*validCreate("111"),
		*validCreate("222"),
		{Name: "No ISBN", Category: "X", Quantity: 1},
		*validCreate("333"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Failed, 1)
}
