package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

// BookRepository handles book data access
type BookRepository struct {
	db database.Database
}

// NewBookRepository creates a new book repository
func NewBookRepository(db database.Database) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book with no borrowers
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		CREATE book CONTENT {
			uuid: $uuid,
			isbn: $isbn,
			name: $name,
			category: $category,
			price: $price,
			quantity: $quantity,
			borrowed_by: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"uuid":     book.UUID,
		"isbn":     book.ISBN,
		"name":     book.Name,
		"category": book.Category,
		"price":    book.Price,
		"quantity": book.Quantity,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: isbn already exists", database.ErrDuplicate)
		}
		return err
	}

	data, err := firstRecord(result)
	if err != nil {
		return err
	}
	*book = *parseBook(data)
	return nil
}

// GetByISBN retrieves a book by its ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT * FROM book WHERE isbn = $isbn LIMIT 1`
	vars := map[string]interface{}{"isbn": isbn}

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
	return parseBook(data), nil
}

// List returns every book ordered by name
func (r *BookRepository) List(ctx context.Context) ([]*model.Book, error) {
	return r.listBooks(ctx, `SELECT * FROM book ORDER BY name ASC`, nil)
}

// ListBorrowedBy returns the books userID currently holds
func (r *BookRepository) ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error) {
	query := `SELECT * FROM book WHERE borrowed_by CONTAINS $user_id ORDER BY name ASC`
	vars := map[string]interface{}{"user_id": userID}

	return r.listBooks(ctx, query, vars)
}

// Update applies the catalog fields set in req. A quantity change only
// applies while it stays at or above the number of borrowers.
// Returns (nil, nil) when no book matched the ISBN and guard.
func (r *BookRepository) Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	setClause := "updated_on = time::now()"
	where := "isbn = $isbn"
	vars := map[string]interface{}{"isbn": isbn}

	if req.Name != nil {
		setClause += ", name = $name"
		vars["name"] = *req.Name
	}
	if req.Category != nil {
		setClause += ", category = $category"
		vars["category"] = *req.Category
	}
	if req.Price != nil {
		setClause += ", price = $price"
		vars["price"] = *req.Price
	}
	if req.Quantity != nil {
		setClause += ", quantity = $quantity"
		where += " AND array::len(borrowed_by) <= $quantity"
		vars["quantity"] = *req.Quantity
	}

	query := "UPDATE book SET " + setClause + " WHERE " + where + " RETURN AFTER"

	return r.mutate(ctx, query, vars)
}

// Delete removes the book if nobody is holding a copy.
// Reports whether a record was deleted.
func (r *BookRepository) Delete(ctx context.Context, isbn string) (bool, error) {
	query := `DELETE book WHERE isbn = $isbn AND array::len(borrowed_by) = 0 RETURN BEFORE`
	vars := map[string]interface{}{"isbn": isbn}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return len(database.Records(result)) > 0, nil
}

// AddBorrower appends userID to the borrowers of the book if a copy is
// free and userID is not already holding one.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	query := `
		UPDATE book SET borrowed_by += $user_id, updated_on = time::now()
		WHERE isbn = $isbn
			AND array::len(borrowed_by) < quantity
			AND borrowed_by CONTAINSNOT $user_id
		RETURN AFTER
	`
	vars := map[string]interface{}{"isbn": isbn, "user_id": userID}

	return r.mutate(ctx, query, vars)
}

// RemoveBorrower takes userID off the borrowers of the book if present.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	query := `
		UPDATE book SET borrowed_by -= $user_id, updated_on = time::now()
		WHERE isbn = $isbn AND borrowed_by CONTAINS $user_id
		RETURN AFTER
	`
	vars := map[string]interface{}{"isbn": isbn, "user_id": userID}

	return r.mutate(ctx, query, vars)
}

func (r *BookRepository) mutate(ctx context.Context, query string, vars map[string]interface{}) (*model.Book, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	data, err := firstRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseBook(data), nil
}

func (r *BookRepository) listBooks(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Book, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := database.Records(result)
	books := make([]*model.Book, 0, len(records))
	for _, rec := range records {
		if data, ok := rec.(map[string]interface{}); ok {
			books = append(books, parseBook(data))
		}
	}
	return books, nil
}

func parseBook(data map[string]interface{}) *model.Book {
	return &model.Book{
		ID:         convertSurrealID(data["id"]),
		UUID:       getString(data, "uuid"),
		ISBN:       getString(data, "isbn"),
		Name:       getString(data, "name"),
		Category:   getString(data, "category"),
		Price:      getFloat(data, "price"),
		Quantity:   getInt(data, "quantity"),
		BorrowedBy: getStringSlice(data, "borrowed_by"),
		CreatedOn:  parseTime(data["created_on"]),
		UpdatedOn:  parseTime(data["updated_on"]),
	}
}
