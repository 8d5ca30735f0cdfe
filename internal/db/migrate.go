package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/userapi/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// database/sql drivers used for the migration connection
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending up migration for dbType over its own connection.
func Migrate(dbType, dsn string, log *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	sqldb, err := openForMigrate(dbType, dsn)
	if err != nil {
		return err
	}

	var driver database.Driver

	switch dbType {
	case config.DBPostgres:
		driver, err = postgres.WithInstance(sqldb, &postgres.Config{})
	case config.DBMySQL:
		driver, err = mysql.WithInstance(sqldb, &mysql.Config{})
	case config.DBSQLite:
		driver, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	default:
		err = fmt.Errorf("no migrations for DB_TYPE %q", dbType)
	}

	if err != nil {
		_ = sqldb.Close()
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		_ = sqldb.Close()
		return fmt.Errorf("migrations init: %w", err)
	}
	defer m.Close()

	m.Log = &migrateLogger{log: log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrations version: %w", err)
	}

	log.Info("schema up to date", "db_type", dbType, "version", version, "dirty", dirty)

	return nil
}

func openForMigrate(dbType, dsn string) (*sql.DB, error) {
	sqldb, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s for migrations: %w", dbType, err)
	}

	return sqldb, nil
}

type migrateLogger struct {
	log *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "component", "migrate")
}

func (l *migrateLogger) Verbose() bool { return false }
