// Package storetest holds behaviour tests shared by every storage backend.
//
// A backend test package calls RunBookStore and RunUserStore with a setup
// function returning fresh, empty repositories:
//
//	func TestSQLStores(t *testing.T) {
//	    storetest.RunBookStore(t, newSQLiteStores)
//	}
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/testing/fixtures"
)

// BookStore is the book repository surface under test
type BookStore interface {
	Create(ctx context.Context, book *model.Book) error
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context) ([]*model.Book, error)
	ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error)
	Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, isbn string) (bool, error)
	AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error)
	RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error)
}

// UserStore is the user repository surface under test
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// Setup returns empty repositories backed by the same database
type Setup func(t *testing.T) (BookStore, UserStore)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RunBookStore runs the book repository behaviour suite
func RunBookStore(t *testing.T, setup Setup) {
	t.Run("CreateAndGetByISBN", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)

		created := f.CreateBook(t, fixtures.WithISBN("111"), fixtures.WithName("Dune"), fixtures.WithQuantity(3))
		assert.NotEmpty(t, created.ID)
		assert.Empty(t, created.BorrowedBy)

		got, err := books.GetByISBN(ctx, "111")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.UUID, got.UUID)
		assert.Equal(t, "Dune", got.Name)
		assert.Equal(t, 3, got.Quantity)
		assert.Equal(t, 3, got.AvailableQuantity())
		assert.False(t, got.CreatedOn.IsZero())
	})

	t.Run("GetByISBN_Missing", func(t *testing.T) {
		books, _ := setup(t)

		got, err := books.GetByISBN(testCtx(t), "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Create_DuplicateISBN", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		f.CreateBook(t, fixtures.WithISBN("dup"))

		err := books.Create(testCtx(t), &model.Book{ISBN: "dup", Name: "Other", Category: "X", Quantity: 1})
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("List", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		f.CreateBook(t, fixtures.WithName("B title"))
		f.CreateBook(t, fixtures.WithName("A title"))

		list, err := books.List(testCtx(t))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "A title", list[0].Name)
	})

	t.Run("AddBorrower_Guards", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)
		book := f.CreateBook(t, fixtures.WithQuantity(1))
		alice := f.CreateUser(t)
		bob := f.CreateUser(t)

		updated, err := books.AddBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, []string{alice.ID}, updated.BorrowedBy)
		assert.Equal(t, 0, updated.AvailableQuantity())

		// already holding
		again, err := books.AddBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, again)

		// no copies left
		full, err := books.AddBorrower(ctx, book.ISBN, bob.ID)
		require.NoError(t, err)
		assert.Nil(t, full)

		// unknown isbn
		missing, err := books.AddBorrower(ctx, "nope", bob.ID)
		require.NoError(t, err)
		assert.Nil(t, missing)

		stored, err := books.GetByISBN(ctx, book.ISBN)
		require.NoError(t, err)
		assert.Equal(t, []string{alice.ID}, stored.BorrowedBy)
	})

	t.Run("AddBorrower_ConcurrentLastCopy", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		book := f.CreateBook(t, fixtures.WithQuantity(1))

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				updated, err := books.AddBorrower(ctx, book.ISBN, fmt.Sprintf("user:w%d", i))
				if err == nil && updated != nil {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, winners)
		stored, err := books.GetByISBN(testCtx(t), book.ISBN)
		require.NoError(t, err)
		assert.Len(t, stored.BorrowedBy, 1)
	})

	t.Run("RemoveBorrower", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)
		book := f.CreateBook(t, fixtures.WithQuantity(2))
		alice := f.CreateUser(t)
		bob := f.CreateUser(t)

		_, err := books.AddBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		_, err = books.AddBorrower(ctx, book.ISBN, bob.ID)
		require.NoError(t, err)

		updated, err := books.RemoveBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, []string{bob.ID}, updated.BorrowedBy)

		// not holding any more
		again, err := books.RemoveBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, again)
	})

	t.Run("ListBorrowedBy", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)
		first := f.CreateBook(t)
		f.CreateBook(t)
		alice := f.CreateUser(t)

		_, err := books.AddBorrower(ctx, first.ISBN, alice.ID)
		require.NoError(t, err)

		held, err := books.ListBorrowedBy(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, held, 1)
		assert.Equal(t, first.ISBN, held[0].ISBN)

		none, err := books.ListBorrowedBy(ctx, "user:nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Update", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)
		book := f.CreateBook(t, fixtures.WithQuantity(2))
		alice := f.CreateUser(t)
		bob := f.CreateUser(t)

		name := "Renamed"
		price := 3.0
		updated, err := books.Update(ctx, book.ISBN, &model.UpdateBookRequest{Name: &name, Price: &price})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Renamed", updated.Name)
		assert.InDelta(t, 3.0, updated.Price, 0.0001)
		assert.Equal(t, book.Category, updated.Category)

		_, err = books.AddBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)
		_, err = books.AddBorrower(ctx, book.ISBN, bob.ID)
		require.NoError(t, err)

		one := 1
		rejected, err := books.Update(ctx, book.ISBN, &model.UpdateBookRequest{Quantity: &one})
		require.NoError(t, err)
		assert.Nil(t, rejected)

		five := 5
		grown, err := books.Update(ctx, book.ISBN, &model.UpdateBookRequest{Quantity: &five})
		require.NoError(t, err)
		require.NotNil(t, grown)
		assert.Equal(t, 3, grown.AvailableQuantity())

		missing, err := books.Update(ctx, "nope", &model.UpdateBookRequest{Name: &name})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Delete", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)
		book := f.CreateBook(t)
		alice := f.CreateUser(t)

		_, err := books.AddBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)

		deleted, err := books.Delete(ctx, book.ISBN)
		require.NoError(t, err)
		assert.False(t, deleted, "book with borrowers must not be deleted")

		_, err = books.RemoveBorrower(ctx, book.ISBN, alice.ID)
		require.NoError(t, err)

		deleted, err = books.Delete(ctx, book.ISBN)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := books.GetByISBN(ctx, book.ISBN)
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err = books.Delete(ctx, book.ISBN)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

// RunUserStore runs the user repository behaviour suite
func RunUserStore(t *testing.T, setup Setup) {
	t.Run("CreateAndGet", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		ctx := testCtx(t)

		created := f.CreateUser(t, fixtures.WithUsername("alice"), fixtures.AsAdmin())
		assert.NotEmpty(t, created.ID)

		byID, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "alice", byID.Username)
		assert.Equal(t, model.UserRoleAdmin, byID.Role)
		assert.NotEmpty(t, byID.Hash)

		byName, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		_, users := setup(t)
		ctx := testCtx(t)

		byName, err := users.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, byName)

		byID, err := users.GetByID(ctx, "user:ghost")
		require.NoError(t, err)
		assert.Nil(t, byID)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		f.CreateUser(t, fixtures.WithUsername("bob"))

		err := users.Create(testCtx(t), &model.User{Username: "bob", Hash: "x", Role: model.UserRoleGuest})
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("List", func(t *testing.T) {
		books, users := setup(t)
		f := fixtures.New(books, users)
		f.CreateUser(t, fixtures.WithUsername("zed"))
		f.CreateUser(t, fixtures.WithUsername("amy"))

		list, err := users.List(testCtx(t))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "amy", list[0].Username)
	})
}
