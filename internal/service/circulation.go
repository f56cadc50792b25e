package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgo/shelf/internal/model"
)

// CirculationService lends and takes back copies of books
type CirculationService struct {
	bookRepo BookRepository
	userRepo UserRepository
}

// CirculationServiceConfig holds configuration for the circulation service
type CirculationServiceConfig struct {
	BookRepo BookRepository
	UserRepo UserRepository
}

// NewCirculationService creates a new circulation service
func NewCirculationService(cfg CirculationServiceConfig) *CirculationService {
	return &CirculationService{
		bookRepo: cfg.BookRepo,
		userRepo: cfg.UserRepo,
	}
}

// Borrow lends one copy of the book to userID and returns the updated book
func (s *CirculationService) Borrow(ctx context.Context, isbn, userID string) (*model.Book, error) {
	for attempt := 0; attempt < maxGuardAttempts; attempt++ {
		if err := s.checkBorrow(ctx, isbn, userID); err != nil {
			return nil, err
		}

		book, err := s.bookRepo.AddBorrower(ctx, isbn, userID)
		if err != nil {
			return nil, err
		}
		if book != nil {
			return book, nil
		}
		slog.Warn("borrow guard rejected, re-checking", "isbn", isbn, "user_id", userID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("borrow %s: %w", isbn, ErrConcurrentUpdate)
}

// checkBorrow evaluates the borrow preconditions in order
func (s *CirculationService) checkBorrow(ctx context.Context, isbn, userID string) error {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if !book.IsAvailable() {
		return ErrBookUnavailable
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	if book.HasBorrower(userID) {
		return ErrAlreadyBorrowed
	}
	return nil
}

// Return takes back the copy userID holds and returns the updated book
func (s *CirculationService) Return(ctx context.Context, isbn, userID string) (*model.Book, error) {
	for attempt := 0; attempt < maxGuardAttempts; attempt++ {
		if err := s.checkReturn(ctx, isbn, userID); err != nil {
			return nil, err
		}

		book, err := s.bookRepo.RemoveBorrower(ctx, isbn, userID)
		if err != nil {
			return nil, err
		}
		if book != nil {
			return book, nil
		}
		slog.Warn("return guard rejected, re-checking", "isbn", isbn, "user_id", userID, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("return %s: %w", isbn, ErrConcurrentUpdate)
}

// checkReturn evaluates the return preconditions in order
func (s *CirculationService) checkReturn(ctx context.Context, isbn, userID string) error {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}
	if !book.HasBorrower(userID) {
		return ErrNotBorrowed
	}
	return nil
}

func (s *CirculationService) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}

// BorrowedBooks lists the books userID currently holds
func (s *CirculationService) BorrowedBooks(ctx context.Context, userID string) ([]*model.Book, error) {
	return s.bookRepo.ListBorrowedBy(ctx, userID)
}
