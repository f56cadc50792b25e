package mongorepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/forgo/shelf/internal/model"
)

type bookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UUID       string             `bson:"uuid"`
	ISBN       string             `bson:"isbn"`
	Name       string             `bson:"name"`
	Category   string             `bson:"category"`
	Price      float64            `bson:"price"`
	Quantity   int                `bson:"quantity"`
	BorrowedBy []string           `bson:"borrowedBy"`
	CreatedOn  time.Time          `bson:"createdOn"`
	UpdatedOn  time.Time          `bson:"updatedOn"`
}

func (d *bookDoc) toModel() *model.Book {
	borrowers := d.BorrowedBy
	if borrowers == nil {
		borrowers = []string{}
	}
	return &model.Book{
		ID:         d.ID.Hex(),
		UUID:       d.UUID,
		ISBN:       d.ISBN,
		Name:       d.Name,
		Category:   d.Category,
		Price:      d.Price,
		Quantity:   d.Quantity,
		BorrowedBy: borrowers,
		CreatedOn:  d.CreatedOn,
		UpdatedOn:  d.UpdatedOn,
	}
}

// BookRepository handles book data access
type BookRepository struct {
	coll *mongo.Collection
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{coll: db.Collection(BooksCollection)}
}

// Create inserts a new book with no borrowers
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := bookDoc{
		ID:         primitive.NewObjectID(),
		UUID:       book.UUID,
		ISBN:       book.ISBN,
		Name:       book.Name,
		Category:   book.Category,
		Price:      book.Price,
		Quantity:   book.Quantity,
		BorrowedBy: []string{},
		CreatedOn:  now,
		UpdatedOn:  now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(err, "isbn")
	}
	*book = *doc.toModel()
	return nil
}

// GetByISBN retrieves a book by its ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var doc bookDoc
	if err := r.coll.FindOne(ctx, bson.M{"isbn": isbn}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapErr(err, "book")
	}
	return doc.toModel(), nil
}

// List returns every book ordered by name
func (r *BookRepository) List(ctx context.Context) ([]*model.Book, error) {
	return r.find(ctx, bson.M{})
}

// ListBorrowedBy returns the books userID currently holds
func (r *BookRepository) ListBorrowedBy(ctx context.Context, userID string) ([]*model.Book, error) {
	return r.find(ctx, bson.M{"borrowedBy": userID})
}

// Update applies the catalog fields set in req. A quantity change only
// applies while it stays at or above the number of borrowers.
// Returns (nil, nil) when no book matched the ISBN and guard.
func (r *BookRepository) Update(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error) {
	filter := bson.M{"isbn": isbn}
	set := bson.M{"updatedOn": time.Now().UTC()}

	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Quantity != nil {
		set["quantity"] = *req.Quantity
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$borrowedBy"}, *req.Quantity}}
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

// Delete removes the book if nobody is holding a copy.
// Reports whether a record was deleted.
func (r *BookRepository) Delete(ctx context.Context, isbn string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"isbn": isbn, "borrowedBy": bson.M{"$size": 0}})
	if err != nil {
		return false, wrapErr(err, "book")
	}
	return res.DeletedCount > 0, nil
}

// AddBorrower appends userID to the borrowers of the book if a copy is
// free and userID is not already holding one.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) AddBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	filter := bson.M{
		"isbn":       isbn,
		"borrowedBy": bson.M{"$ne": userID},
		"$expr":      bson.M{"$lt": bson.A{bson.M{"$size": "$borrowedBy"}, "$quantity"}},
	}
	update := bson.M{
		"$push": bson.M{"borrowedBy": userID},
		"$set":  bson.M{"updatedOn": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// RemoveBorrower takes userID off the borrowers of the book if present.
// Returns (nil, nil) when the guard rejects.
func (r *BookRepository) RemoveBorrower(ctx context.Context, isbn, userID string) (*model.Book, error) {
	filter := bson.M{"isbn": isbn, "borrowedBy": userID}
	update := bson.M{
		"$pull": bson.M{"borrowedBy": userID},
		"$set":  bson.M{"updatedOn": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *BookRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*model.Book, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapErr(err, "book")
	}
	return doc.toModel(), nil
}

func (r *BookRepository) find(ctx context.Context, filter bson.M) ([]*model.Book, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, wrapErr(err, "book")
	}
	defer cursor.Close(ctx)

	var docs []bookDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr(err, "book")
	}

	books := make([]*model.Book, 0, len(docs))
	for i := range docs {
		books = append(books, docs[i].toModel())
	}
	return books, nil
}
