package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/allisson/signatrust/migrations"
)

// migrateScheme maps a database/sql driver name to the golang-migrate URL scheme.
var migrateScheme = map[string]string{
	"postgres": "postgres",
	"mysql":    "mysql",
}

// RunMigrations applies every pending embedded migration. A database that is
// already up to date is not an error.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	scheme, ok := migrateScheme[dbDriver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", dbDriver)
	}

	src, err := migrations.Source(dbDriver)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL(scheme, dbConnectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	after, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("database migrated",
		slog.String("driver", dbDriver),
		slog.Uint64("from_version", uint64(before)),
		slog.Uint64("to_version", uint64(after)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// databaseURL prefixes go-sql-driver/mysql DSNs, which carry no scheme, with "mysql://".
func databaseURL(scheme, dsn string) string {
	if scheme == "mysql" && !strings.Contains(dsn, "://") {
		return "mysql://" + dsn
	}
	return dsn
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr),
		)
	}
}
