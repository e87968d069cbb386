package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/platform/migrations"
	"github.com/phrazzld/scry-decks/internal/platform/postgres"
	"github.com/phrazzld/scry-decks/internal/platform/sqlite"
	"github.com/phrazzld/scry-decks/internal/store"
)

// openDatabase connects to the configured backend. For sqlite the URL is a
// file path.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case migrations.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	case migrations.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established", "driver", cfg.Driver)
	return db, nil
}

// newStores returns the store implementations for driver.
func newStores(driver string, db *sql.DB, logger *slog.Logger) (store.CardStore, store.CollectionStore, error) {
	switch driver {
	case migrations.DriverPostgres:
		return postgres.NewPostgresCardStore(db, logger), postgres.NewPostgresCollectionStore(db, logger), nil
	case migrations.DriverSQLite:
		return sqlite.NewCardStore(db, logger), sqlite.NewCollectionStore(db, logger), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
