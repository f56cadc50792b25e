// Package app assembles the storage layer selected by configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgo/shelf/internal/config"
	"github.com/forgo/shelf/internal/database"
	"github.com/forgo/shelf/internal/repository"
	"github.com/forgo/shelf/internal/repository/mongorepo"
	"github.com/forgo/shelf/internal/repository/sqlrepo"
	"github.com/forgo/shelf/internal/service"
	"github.com/forgo/shelf/migrations"
)

// Stores bundles the repositories of one storage backend
type Stores struct {
	Books  service.BookRepository
	Users  service.UserRepository
	Pinger database.Pinger
	closer func() error
}

// Close releases the backend connection
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// OpenStores connects to the configured backend, prepares its schema and
// returns repositories bound to it
func OpenStores(ctx context.Context, cfg config.DatabaseConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverSurrealDB:
		return openSurreal(ctx, cfg.Surreal)
	case config.DriverMongoDB:
		return openMongo(ctx, cfg.Mongo)
	case config.DriverSQLite:
		return openSQL(ctx, database.DriverSQLite, cfg.SQLite)
	case config.DriverPostgres:
		return openSQL(ctx, database.DriverPostgres, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func openSurreal(ctx context.Context, cfg config.SurrealConfig) (*Stores, error) {
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Host,
		Port:      cfg.Port,
		User:      cfg.User,
		Password:  cfg.Password,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}

	scripts, err := migrations.Scripts()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.ApplySchema(ctx, scripts); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("connected to database",
		slog.String("driver", config.DriverSurrealDB),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
	)
	return &Stores{
		Books:  repository.NewBookRepository(db),
		Users:  repository.NewUserRepository(db),
		Pinger: db,
		closer: db.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*Stores, error) {
	m := database.NewMongo(database.MongoConfig{
		URI:      cfg.URI,
		Database: cfg.Database,
		Timeout:  cfg.Timeout,
	})
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	if err := mongorepo.EnsureIndexes(ctx, m.DB()); err != nil {
		_ = m.Close()
		return nil, err
	}

	slog.Info("connected to database",
		slog.String("driver", config.DriverMongoDB),
		slog.String("database", cfg.Database),
	)
	return &Stores{
		Books:  mongorepo.NewBookRepository(m.DB()),
		Users:  mongorepo.NewUserRepository(m.DB()),
		Pinger: m,
		closer: m.Close,
	}, nil
}

func openSQL(ctx context.Context, driver string, cfg config.SQLConfig) (*Stores, error) {
	s := database.NewSQL(database.SQLConfig{
		Driver:       driver,
		DSN:          cfg.DSN,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	if err := sqlrepo.Migrate(ctx, s.DB()); err != nil {
		_ = s.Close()
		return nil, err
	}

	slog.Info("connected to database", slog.String("driver", driver))
	return &Stores{
		Books:  sqlrepo.NewBookRepository(s.DB()),
		Users:  sqlrepo.NewUserRepository(s.DB()),
		Pinger: s,
		closer: s.Close,
	}, nil
}
