package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/llm"
	"github.com/phrazzld/ankigen/internal/platform/memory"
	"github.com/phrazzld/ankigen/internal/platform/postgres"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when sessions are kept in memory.
	db *sql.DB

	sessionStore   store.SessionStore
	sessionService service.SessionService

	// purger removes expired sessions from stores without built-in expiry.
	purger sessionPurger
}

// newApplication creates the application with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupStore(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	generator, err := llm.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize card generator: %w", err)
	}

	if err := app.setupService(generator); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) setupStore(ctx context.Context) error {
	switch app.config.Store.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, app.config.Store.DatabaseURL, app.logger)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		app.db = db

		if err := postgres.Migrate(ctx, db, app.logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		pgStore := postgres.NewSessionStore(db, app.logger)
		app.sessionStore = pgStore
		app.purger = pgStore
	default:
		app.sessionStore = memory.NewSessionStore(app.config.Store.SessionTTL(), app.logger)
	}

	app.logger.Info("session store initialized",
		slog.String("driver", app.config.Store.Driver),
		slog.Duration("session_ttl", app.config.Store.SessionTTL()))
	return nil
}

func (app *application) setupService(generator generation.Generator) error {
	svc, err := service.NewSessionService(
		app.sessionStore,
		document.NewEncoder(app.logger),
		generator,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}
	app.sessionService = svc
	return nil
}

// Run serves HTTP until ctx is cancelled. Expired sessions are purged in the
// background while the server runs.
func (app *application) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()

	if app.purger != nil {
		ttl := app.config.Store.SessionTTL()
		go runJanitor(janitorCtx, app.purger, ttl, janitorInterval(ttl), app.logger)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		} else {
			app.logger.Info("database connection closed")
		}
	}
}

// janitorInterval runs the purge a few times per TTL, never more often than
// once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}
