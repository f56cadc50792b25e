package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// SQL driver names accepted by NewSQL
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// SQLConfig holds configuration for the SQL backends
type SQLConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// SQL wraps an sqlx handle for SQLite or Postgres
type SQL struct {
	db     *sqlx.DB
	config SQLConfig
}

// NewSQL creates a new SQL instance
func NewSQL(cfg SQLConfig) *SQL {
	return &SQL{config: cfg}
}

// Connect opens the pool and pings the server
func (s *SQL) Connect(ctx context.Context) error {
	switch s.config.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unsupported sql driver %q", ErrConnection, s.config.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, s.config.Driver, s.config.DSN)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if s.config.Driver == DriverSQLite {
		// sqlite allows a single writer; serialize through one connection
		db.SetMaxOpenConns(1)
	} else if s.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.config.MaxOpenConns)
	}

	s.db = db
	return nil
}

// Close closes the pool
func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQL) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// DB returns the sqlx handle, nil before Connect
func (s *SQL) DB() *sqlx.DB {
	return s.db
}
