package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/model"
)

// errGuard aborts a transaction whose precondition did not hold
var errGuard = errors.New("guard rejected")

type bookRow struct {
	ID        string    `db:"id"`
	UUID      string    `db:"uuid"`
	ISBN      string    `db:"isbn"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Price     float64   `db:"price"`
	Quantity  int       `db:"quantity"`
	CreatedOn time.Time `db:"created_on"`
	UpdatedOn time.Time `db:"updated_on"`
}

func (r bookRow) toModel(borrowers []string) *model.Book {
	if borrowers == nil {
		borrowers = []string{}
	}
	return &model.Book{
		ID:         r.ID,
		UUID:       r.UUID,
		ISBN:       r.ISBN,
		Name:       r.Name,
		Category:   r.Category,
		Price:      r.Price,
		Quantity:   r.Quantity,
		BorrowedBy: borrowers,
		CreatedOn:  r.CreatedOn,
		UpdatedOn:  r.UpdatedOn,
	}
}

type borrowerRow struct {
	BookID string `db:"book_id"`
	UserID string `db:"user_id"`
}

// BookRepository handles book data access
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book with no borrowers
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	now := time.Now().UTC()
	row := bookRow{
		ID:        uuid.NewString(),
		UUID:      book.UUID,
		ISBN:      book.ISBN,
		Name:      book.Name,
		Category:  book.Category,
		Price:     book.Price,
		Quantity:  book.Quantity,
		CreatedOn: now,
		UpdatedOn: now,
	}

	query := `INSERT INTO books (id, uuid, isbn, name, category, price, quantity, created_on, updated_on)
		VALUES (:id, :uuid, :isbn, :name, :category, :price, :quantity, :created_on, :updated_on)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: isbn already exists", database.ErrDuplicate)
		}
		return fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	*book = *row.toModel(nil)
	return nil
}

// GetByISBN retrieves a book by its ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	book, err := getBook(ctx, r.db, isbn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return book, err
}

// List returns every book ordered by name
func (r *BookRepository) List(ctx context.Context) ([]*model.Book, error) {
	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM books ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}
	return r.withBorrowers(ctx, rows)
}

// ListBorrowedBy returns the books userID currently holds
func (r *BookRepository) ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error) {
	query := r.db.Rebind(`
		SELECT b.* FROM books b
		JOIN book_borrowers bb ON bb.book_id = b.id
		WHERE bb.user_id = ?
		ORDER BY b.name`)

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}
	return r.withBorrowers(ctx, rows)
}

// Update applies the catalog fields set in req. A quantity change only
// applies while it stays at or above the number of borrowers.
// Returns (nil, nil) when no book matched the ISBN and guard.
func (r *BookRepository) Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	var book *model.Book
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := lockBook(ctx, tx, isbn)
		if err != nil {
			return err
		}

		sets := []string{"updated_on = ?"}
		args := []interface{}{time.Now().UTC()}
		if req.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *req.Name)
		}
		if req.Category != nil {
			sets = append(sets, "category = ?")
			args = append(args, *req.Category)
		}
		if req.Price != nil {
			sets = append(sets, "price = ?")
			args = append(args, *req.Price)
		}
		where := "id = ?"
		if req.Quantity != nil {
			sets = append(sets, "quantity = ?")
			args = append(args, *req.Quantity)
			where += " AND (SELECT COUNT(*) FROM book_borrowers WHERE book_id = books.id) <= ?"
		}
		args = append(args, id)
		if req.Quantity != nil {
			args = append(args, *req.Quantity)
		}

		query := tx.Rebind("UPDATE books SET " + strings.Join(sets, ", ") + " WHERE " + where)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errGuard
		}

		book, err = getBook(ctx, tx, isbn)
		return err
	})
	return guarded(book, err)
}

// Delete removes the book if nobody is holding a copy.
// Reports whether a record was deleted.
func (r *BookRepository) Delete(ctx context.Context, isbn string) (bool, error) {
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := lockBook(ctx, tx, isbn)
		if err != nil {
			return err
		}

		query := tx.Rebind(`DELETE FROM books WHERE id = ?
			AND NOT EXISTS (SELECT 1 FROM book_borrowers WHERE book_id = ?)`)
		res, err := tx.ExecContext(ctx, query, id, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errGuard
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errGuard) || errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}
	return true, nil
}

// AddBorrower appends userID to the borrowers of the book if a copy is
// free and userID is not already holding one.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	var book *model.Book
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := lockBook(ctx, tx, isbn)
		if err != nil {
			return err
		}

		// The SELECT yields a row only when the guard holds
		query := tx.Rebind(`
			INSERT INTO book_borrowers (book_id, user_id, seq)
			SELECT ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM book_borrowers WHERE book_id = ?)
			WHERE (SELECT COUNT(*) FROM book_borrowers WHERE book_id = ?) < (SELECT quantity FROM books WHERE id = ?)
				AND NOT EXISTS (SELECT 1 FROM book_borrowers WHERE book_id = ? AND user_id = ?)`)
		res, err := tx.ExecContext(ctx, query, id, userID, id, id, id, id, userID)
		if err != nil {
			if isUniqueViolation(err) {
				return errGuard
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errGuard
		}

		book, err = getBook(ctx, tx, isbn)
		return err
	})
	return guarded(book, err)
}

// RemoveBorrower takes userID off the borrowers of the book if present.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	var book *model.Book
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := lockBook(ctx, tx, isbn)
		if err != nil {
			return err
		}

		query := tx.Rebind(`DELETE FROM book_borrowers WHERE book_id = ? AND user_id = ?`)
		res, err := tx.ExecContext(ctx, query, id, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errGuard
		}

		book, err = getBook(ctx, tx, isbn)
		return err
	})
	return guarded(book, err)
}

// lockBook touches the book row so concurrent writers on the same book
// queue behind this transaction, and returns its id
func lockBook(ctx context.Context, tx *sqlx.Tx, isbn string) (string, error) {
	var id string
	query := tx.Rebind(`UPDATE books SET updated_on = ? WHERE isbn = ? RETURNING id`)
	if err := tx.GetContext(ctx, &id, query, time.Now().UTC(), isbn); err != nil {
		return "", err
	}
	return id, nil
}

// guarded maps a transaction outcome to the (nil, nil) rejection contract
func guarded(book *model.Book, err error) (*model.Book, error) {
	if err == nil {
		return book, nil
	}
	if errors.Is(err, errGuard) || errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
}

// queryer is implemented by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func getBook(ctx context.Context, q queryer, isbn string) (*model.Book, error) {
	var row bookRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(`SELECT * FROM books WHERE isbn = ?`), isbn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	var borrowers []string
	query := q.Rebind(`SELECT user_id FROM book_borrowers WHERE book_id = ? ORDER BY seq`)
	if err := sqlx.SelectContext(ctx, q, &borrowers, query, row.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}
	return row.toModel(borrowers), nil
}

// withBorrowers loads the borrower lists of rows in one query
func (r *BookRepository) withBorrowers(ctx context.Context, rows []bookRow) ([]*model.Book, error) {
	books := make([]*model.Book, 0, len(rows))
	if len(rows) == 0 {
		return books, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In(`SELECT book_id, user_id FROM book_borrowers WHERE book_id IN (?) ORDER BY book_id, seq`, ids)
	if err != nil {
		return nil, err
	}

	var borrowers []borrowerRow
	if err := r.db.SelectContext(ctx, &borrowers, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	byBook := make(map[string][]string, len(rows))
	for _, b := range borrowers {
		byBook[b.BookID] = append(byBook[b.BookID], b.UserID)
	}
	for _, row := range rows {
		books = append(books, row.toModel(byBook[row.ID]))
	}
	return books, nil
}
