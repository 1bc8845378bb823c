// Package storeinfra opens the SQLite backed transsaction store and builds the
// go-repository-bun repository on top of it.
package storeinfra

import (
	"context"
	"database/sql"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-transsaction-cache/store"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Config holds the store connection settings.
type Config struct {
	DSN          string
	MaxOpenConns int
	PageSize     int
}

// DefaultConfig returns a shared in-memory database.
func DefaultConfig() Config {
	return Config{
		DSN:          "file:transsaction?mode=memory&cache=shared",
		MaxOpenConns: 1,
		PageSize:     store.DefaultPageSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "must not be empty"}
	}
	if c.MaxOpenConns < 0 {
		return &ConfigError{Field: "MaxOpenConns", Message: "must be non-negative"}
	}
	if c.PageSize < 0 {
		return &ConfigError{Field: "PageSize", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError reports an invalid store setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "store config error: " + e.Field + " " + e.Message
}

// Open connects to SQLite and creates the schema when missing.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the transsactions table and its identity index.
func Migrate(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*store.Row)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create transsactions table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*store.Row)(nil)).
		Index("transsactions_identity_dni_idx").
		Column(store.IdentifierColumn).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create identity index: %w", err)
	}
	return nil
}

// NewRepository builds the generic repository for transsaction rows.
func NewRepository(db *bun.DB) repository.Repository[*store.Row] {
	return repository.NewRepository[*store.Row](db, repository.ModelHandlers[*store.Row]{
		NewRecord: func() *store.Row {
			return &store.Row{}
		},
		GetID: func(row *store.Row) uuid.UUID {
			if row == nil {
				return uuid.Nil
			}
			return row.ID
		},
		SetID: func(row *store.Row, id uuid.UUID) {
			row.ID = id
		},
		GetIdentifier: func() string {
			return store.IdentifierColumn
		},
	})
}

// NewGateway opens the database and returns the store gateway over it.
// The caller owns the returned *bun.DB.
func NewGateway(ctx context.Context, cfg Config) (*store.RepositoryGateway, *bun.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store.NewRepositoryGateway(NewRepository(db), cfg.PageSize), db, nil
}
