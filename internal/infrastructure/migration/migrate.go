package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Runner applies versioned SQL migrations from a directory against a
// Postgres database. It wraps golang-migrate with logging; the schema
// itself (staging tables, internal entities, sync jobs) lives in
// migrations/.
type Runner struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Runner over an existing database handle
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Runner, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration: source %s: %w", migrationsPath, err)
	}

	return &Runner{m: m, log: log}, nil
}

// Up applies all pending migrations
func (r *Runner) Up() error {
	err := r.m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		r.log.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration: up: %w", err)
	}
	r.logVersion("Migrations applied")
	return nil
}

// Down rolls back every applied migration
func (r *Runner) Down() error {
	err := r.m.Down()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		r.log.Info("Nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("migration: down: %w", err)
	}
	r.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back
func (r *Runner) Steps(n int) error {
	err := r.m.Steps(n)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		r.log.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration: steps(%d): %w", n, err)
	}
	r.logVersion("Migration steps applied")
	return nil
}

// GoTo migrates up or down to the given version
func (r *Runner) GoTo(version uint) error {
	err := r.m.Migrate(version)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		r.log.Info("Already at requested version", zap.Uint("version", version))
		return nil
	case err != nil:
		return fmt.Errorf("migration: goto %d: %w", version, err)
	}
	r.logVersion("Migrated to version")
	return nil
}

// Version reports the current schema version. A fresh database reports
// version 0 and no error.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running any SQL. Only for
// recovering a dirty schema_migrations row.
func (r *Runner) Force(version int) error {
	r.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("migration: force %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database
func (r *Runner) Drop() error {
	r.log.Warn("Dropping all database objects")
	if err := r.m.Drop(); err != nil {
		return fmt.Errorf("migration: drop: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (r *Runner) Close() error {
	sourceErr, dbErr := r.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration: close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration: close database: %w", dbErr)
	}
	return nil
}

func (r *Runner) logVersion(msg string) {
	version, dirty, err := r.m.Version()
	if err != nil {
		r.log.Info(msg)
		return
	}
	r.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
