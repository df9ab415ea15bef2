package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/printops/printserver/internal/app"
	"github.com/printops/printserver/internal/config"
)

// RunMigrations executes database migrations based on the configured store
// driver. The file store has no schema; running migrations against it is a
// configuration error.
func RunMigrations() error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	if cfg.StoreDriver == config.StoreDriverFile {
		return fmt.Errorf("store driver %q has no migrations", cfg.StoreDriver)
	}

	logger.Info("running database migrations",
		slog.String("driver", cfg.StoreDriver),
	)

	migrationsPath := "file://migrations/postgresql"
	if cfg.StoreDriver == config.StoreDriverMySQL {
		migrationsPath = "file://migrations/mysql"
	}

	m, err := migrate.New(migrationsPath, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
