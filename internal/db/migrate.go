package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"videoab/db/migrations"
)

// Migrate brings the schema at addr to migrations.Version and logs the
// versions it moved between. A database left dirty by a failed migration
// is refused.
func Migrate(addr string, logger *slog.Logger) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer source.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", source, addr)
	if err != nil {
		return fmt.Errorf("connect migrator: %w", err)
	}
	defer mg.Close()

	from, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty:
		return fmt.Errorf("schema version %d is dirty", from)
	}

	err = mg.Migrate(migrations.Version)
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema up to date", slog.Uint64("version", uint64(from)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %d -> %d: %w", from, migrations.Version, err)
	}
	logger.Info("schema migrated",
		slog.Uint64("from", uint64(from)),
		slog.Uint64("to", uint64(migrations.Version)),
	)
	return nil
}
