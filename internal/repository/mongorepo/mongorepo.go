// Package mongorepo implements the Shelf repositories on MongoDB.
//
// Borrower changes use FindOneAndUpdate with the precondition in the filter,
// so the check and the write are one atomic document operation.
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/forgo/shelf/internal/database"
)

// Collection names
const (
	BooksCollection = "books"
	UsersCollection = "users"
)

// EnsureIndexes creates the unique and lookup indexes both repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(BooksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "borrowedBy", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("book indexes: %w", err)
	}

	_, err = db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

// wrapErr maps driver errors onto the database sentinels
func wrapErr(err error, what string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s already exists", database.ErrDuplicate, what)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", database.ErrConnection, err)
	}
	return fmt.Errorf("%w: %v", database.ErrQuery, err)
}
