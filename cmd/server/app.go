package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/domain/srs"
	"github.com/phrazzld/scry-decks/internal/events"
	"github.com/phrazzld/scry-decks/internal/platform/redis"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/service/auth"
	"github.com/phrazzld/scry-decks/internal/service/card_review"
	"github.com/phrazzld/scry-decks/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore       store.CardStore
	collectionStore store.CollectionStore

	tokenValidator    auth.TokenValidator
	srsService        srs.Service
	collectionService service.CollectionService
	cardService       service.CardService
	cardReviewService card_review.CardReviewService

	// Event system
	eventEmitter *events.AsyncEmitter
	redisClient  io.Closer
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be connected and migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenValidator, err = auth.NewTokenValidator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}

	app.cardStore, app.collectionStore, err = newStores(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	if err := app.setupEvents(ctx); err != nil {
		return nil, err
	}

	app.srsService = srs.NewDefaultService()

	app.collectionService, err = service.NewCollectionService(app.collectionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection service: %w", err)
	}

	app.cardService, err = service.NewCardService(app.cardStore, app.collectionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.cardReviewService = card_review.NewCardReviewService(
		db,
		app.cardStore,
		app.collectionStore,
		app.srsService,
		logger,
		card_review.WithEventEmitter(app.eventEmitter),
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// setupEvents builds the review event pipeline: an async queue in front of
// a fan-out emitter whose sink is a Redis stream when configured and the
// log otherwise.
func (app *application) setupEvents(ctx context.Context) error {
	fanout := events.NewInMemoryEventEmitter(app.logger)

	if app.config.Redis.Enabled() {
		client, err := redis.NewClient(ctx, app.config.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redisClient = client
		fanout.RegisterHandler(redis.NewStreamPublisher(
			client, app.config.Redis.Stream, app.config.Redis.MaxLen, app.logger))
		app.logger.Info("publishing events to redis stream", "stream", app.config.Redis.Stream)
	} else {
		fanout.RegisterHandler(events.NewLogHandler(app.logger))
	}

	app.eventEmitter = events.NewAsyncEmitter(fanout, events.DefaultAsyncConfig(), app.logger)
	app.eventEmitter.Start()
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains pending events, then closes external connections.
func (app *application) cleanup(ctx context.Context) {
	if app.eventEmitter != nil {
		if err := app.eventEmitter.Close(ctx); err != nil {
			app.logger.Error("error draining event queue", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
