package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Mongo owns a MongoDB client and the database the repositories use
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	config MongoConfig
}

// NewMongo creates a new Mongo instance
func NewMongo(cfg MongoConfig) *Mongo {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Mongo{config: cfg}
}

// Connect opens the client and verifies the server is reachable
func (m *Mongo) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.config.URI))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("%w: ping failed: %v", ErrConnection, err)
	}

	m.client = client
	m.db = client.Database(m.config.Database)
	return nil
}

// Close disconnects the client
func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Ping checks the database connection
func (m *Mongo) Ping(ctx context.Context) error {
	if m.client == nil {
		return ErrConnection
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// DB returns the connected database handle, nil before Connect
func (m *Mongo) DB() *mongo.Database {
	return m.db
}
