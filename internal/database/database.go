package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Connect creates a database connection based on configuration using sqlx.
// For the SQLite file backend the parent directory is created and the file
// itself is created by the driver on first connect.
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName := "sqlite3"
	if cfg.Type == config.DBTypePostgreSQL {
		driverName = "pgx"
	}

	if cfg.Type == config.DBTypeSQLite {
		if cfg.Path == "" {
			return nil, errors.New("database path is empty")
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection serialises writers and avoids SQLITE_BUSY. For the
	// shared-cache memory backend it also keeps the database alive.
	if cfg.IsSQLite() {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// NewMigrator builds a migrate instance over the embedded migrations for the
// configured backend. Closing the returned instance also closes db.
func NewMigrator(db *sqlx.DB, cfg config.DBConfig) (*migrate.Migrate, error) {
	dir := "sqlite"
	if cfg.Type == config.DBTypePostgreSQL {
		dir = "postgres"
	}

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	if cfg.Type == config.DBTypePostgreSQL {
		driver, err = pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	} else {
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", dir, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dir, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations. Running it against an up-to-date
// schema is a no-op. db is left with no connection checked out.
func Migrate(db *sqlx.DB, cfg config.DBConfig) error {
	if cfg.Type == config.DBTypePostgreSQL {
		return migrateOwnHandle(cfg)
	}

	m, err := NewMigrator(db, cfg)
	if err != nil {
		return err
	}
	return up(m)
}

// migrateOwnHandle runs postgres migrations over a short-lived handle. The
// pgx migration driver pins a connection until it is closed, and closing it
// also closes the handle it was given.
func migrateOwnHandle(cfg config.DBConfig) error {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	m, err := NewMigrator(db, cfg)
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()

	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
