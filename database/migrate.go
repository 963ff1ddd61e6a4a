package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Dialect selects the schema and migration driver
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// MigrateUp runs all pending migrations
func MigrateUp(dialect Dialect, dsn string) error {
	m, err := getMigrate(dialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.WithField("dialect", dialect).Info("No new migrations to apply")
	} else {
		version, _, _ := m.Version()
		log.WithFields(log.Fields{
			"dialect": dialect,
			"version": version,
		}).Info("Successfully applied migrations")
	}

	return nil
}

// MigrateDown rolls back the specified number of migrations
func MigrateDown(dialect Dialect, dsn string, stepsStr string) error {
	steps, err := strconv.Atoi(stepsStr)
	if err != nil {
		return fmt.Errorf("invalid steps value: %w", err)
	}
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, err := getMigrate(dialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.WithField("dialect", dialect).Info("No migrations to rollback")
	} else {
		version, _, _ := m.Version()
		log.WithFields(log.Fields{
			"dialect": dialect,
			"version": version,
		}).Info("Successfully rolled back migrations")
	}

	return nil
}

// MigrationStatus reports the applied version and whether the last migration failed
func MigrationStatus(dialect Dialect, dsn string) (version uint, dirty bool, applied bool, err error) {
	m, err := getMigrate(dialect, dsn)
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, true, nil
}

// MigrateStatus logs the current migration status
func MigrateStatus(dialect Dialect, dsn string) error {
	version, dirty, applied, err := MigrationStatus(dialect, dsn)
	if err != nil {
		return err
	}
	if !applied {
		log.WithField("dialect", dialect).Info("No migrations have been applied yet")
		return nil
	}

	status := "clean"
	if dirty {
		status = "dirty"
	}
	log.WithFields(log.Fields{
		"dialect": dialect,
		"version": version,
		"status":  status,
	}).Info("Current migration version")
	return nil
}

// getMigrate creates a migrate instance reading the embedded migrations for dialect
func getMigrate(dialect Dialect, dsn string) (*migrate.Migrate, error) {
	var (
		db     *sql.DB
		driver migratedb.Driver
		err    error
	)

	switch dialect {
	case DialectPostgres:
		pgConfig, parseErr := pgxpool.ParseConfig(dsn)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", parseErr)
		}
		db = stdlib.OpenDB(*pgConfig.ConnConfig)
		driver, err = postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create postgres driver: %w", err)
		}
	case DialectSQLite:
		db, err = sql.Open("sqlite", SQLiteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
