package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

// maxGuardAttempts bounds how often a guarded write is diagnosed and retried
const maxGuardAttempts = 2

// BookRepository defines the interface for book storage
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context) ([]*model.Book, error)
	ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error)
	// Update returns (nil, nil) if the book is missing or the new quantity
	// would fall below the number of borrowers
	Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error)
	// Delete returns false if the book is missing or has borrowers
	Delete(ctx context.Context, isbn string) (bool, error)
	// AddBorrower returns (nil, nil) unless a copy is free and userID is not a borrower
	AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error)
	// RemoveBorrower returns (nil, nil) unless userID is a borrower
	RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error)
}

// CatalogService manages the book inventory
type CatalogService struct {
	bookRepo BookRepository
}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	BookRepo BookRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	return &CatalogService{bookRepo: cfg.BookRepo}
}

// ListBooks returns every book in the catalog
func (s *CatalogService) ListBooks(ctx context.Context) ([]*model.Book, error) {
	return s.bookRepo.List(ctx)
}

// GetBook returns the book with the given ISBN
func (s *CatalogService) GetBook(ctx context.Context, isbn string) (*model.Book, error) {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// CreateBook adds a title to the catalog with no borrowers
func (s *CatalogService) CreateBook(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if err := validationError(req.Validate()); err != nil {
		return nil, err
	}

	book := &model.Book{
		UUID:     uuid.NewString(),
		ISBN:     strings.TrimSpace(req.ISBN),
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price,
		Quantity: req.Quantity,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}
	return book, nil
}

// UpdateBook changes catalog fields of a book. The ISBN and the borrower
// list are not editable here.
func (s *CatalogService) UpdateBook(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	if err := validationError(req.Validate()); err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Category != nil {
		trimmed := strings.TrimSpace(*req.Category)
		req.Category = &trimmed
	}

	for attempt := 0; attempt < maxGuardAttempts; attempt++ {
		updated, err := s.bookRepo.Update(ctx, isbn, req)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			return updated, nil
		}

		current, err := s.GetBook(ctx, isbn)
		if err != nil {
			return nil, err
		}
		if req.Quantity != nil && *req.Quantity < len(current.BorrowedBy) {
			return nil, ErrQuantityBelowBorrowed
		}
		slog.Warn("book update guard rejected, retrying", "isbn", isbn, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("update %s: %w", isbn, ErrConcurrentUpdate)
}

// DeleteBook removes a book nobody is holding
func (s *CatalogService) DeleteBook(ctx context.Context, isbn string) error {
	for attempt := 0; attempt < maxGuardAttempts; attempt++ {
		deleted, err := s.bookRepo.Delete(ctx, isbn)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}

		current, err := s.GetBook(ctx, isbn)
		if err != nil {
			return err
		}
		if len(current.BorrowedBy) > 0 {
			return ErrBookHasBorrowers
		}
		slog.Warn("book delete guard rejected, retrying", "isbn", isbn, "attempt", attempt+1)
	}
	return fmt.Errorf("delete %s: %w", isbn, ErrConcurrentUpdate)
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Created int
	Skipped int
	Failed  map[string]error
}

// ImportBooks creates each book in turn. Existing ISBNs are skipped and
// invalid entries are reported without stopping the import.
func (s *CatalogService) ImportBooks(ctx context.Context, reqs []model.CreateBookRequest) (*ImportResult, error) {
	result := &ImportResult{Failed: make(map[string]error)}
	for i := range reqs {
		_, err := s.CreateBook(ctx, &reqs[i])
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, ErrDuplicateISBN):
			result.Skipped++
		case errors.Is(err, ErrValidation):
			result.Failed[fmt.Sprintf("#%d %s", i+1, reqs[i].ISBN)] = err
		default:
			return result, err
		}
	}
	return result, nil
}
