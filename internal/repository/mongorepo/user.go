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

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Hash      string             `bson:"hash"`
	Role      string             `bson:"role"`
	CreatedOn time.Time          `bson:"createdOn"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Hash:      d.Hash,
		Role:      model.UserRole(d.Role),
		CreatedOn: d.CreatedOn,
	}
}

// UserRepository handles user data access
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.UserRoleGuest
	}
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Hash:      user.Hash,
		Role:      string(user.Role),
		CreatedOn: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(err, "username")
	}
	user.ID = doc.ID.Hex()
	user.CreatedOn = doc.CreatedOn
	return nil
}

// GetByID retrieves a user by ID. Ids that are not ObjectIDs match no user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// List returns all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, wrapErr(err, "user")
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr(err, "user")
	}

	users := make([]*model.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapErr(err, "user")
	}
	return doc.toModel(), nil
}
