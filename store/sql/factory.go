package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a bun database for driver and picks the matching dialect.
func OpenDB(driver string, dsn string) (*sql.DB, schema.Dialect, error) {
	normalized, dialect, err := resolveDialect(driver)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("sqlstore: dsn is required")
	}
	sqlDB, err := sql.Open(normalized, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: open %s: %w", normalized, err)
	}
	if normalized == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	return sqlDB, dialect, nil
}

func resolveDialect(driver string) (string, schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite, sqlitedialect.New(), nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, pgdialect.New(), nil
	default:
		return "", nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func NewStoreFromPersistence(client *persistence.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	}
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

func NewStoreFromDB(db *bun.DB) (*Store, error) {
	return NewStore(db)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: persistence client is required")
		}
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
