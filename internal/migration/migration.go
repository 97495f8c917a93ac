// Package migration creates the schema on startup. SQLite, the default
// in-process store, is migrated from the gorm models; postgres and mysql
// run the versioned SQL files embedded under migrations/.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	clientrepo "github.com/smallbiznis/freelanceflow/internal/client/repository"
	invoicerepo "github.com/smallbiznis/freelanceflow/internal/invoice/repository"
	"gorm.io/gorm"
)

//go:embed migrations
var embeddedMigrations embed.FS

var ErrUnsupportedDialect = errors.New("unsupported_migration_dialect")

// Run brings the schema for dialect up to date.
func Run(conn *gorm.DB, dialect string) error {
	switch dialect {
	case "", "sqlite":
		if err := clientrepo.Migrate(conn); err != nil {
			return fmt.Errorf("migrate clients: %w", err)
		}
		if err := invoicerepo.Migrate(conn); err != nil {
			return fmt.Errorf("migrate invoices: %w", err)
		}
		return nil
	case "postgres", "mysql":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, dialect)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
}

// RunMigrations applies the embedded SQL migrations for dialect.
func RunMigrations(db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	src, err := Source(dialect)
	if err != nil {
		return err
	}

	var driver database.Driver
	switch dialect {
	case "postgres":
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case "mysql":
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB.
	return nil
}

// Source opens the embedded migrations for dialect.
func Source(dialect string) (source.Driver, error) {
	if dialect != "postgres" && dialect != "mysql" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
	sub, err := fs.Sub(embeddedMigrations, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	return src, nil
}
