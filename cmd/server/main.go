// Package main implements the entry point for the ankigen API server, which
// turns uploaded documents into Anki flashcards with a language model.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ankigen server: %v", err)
	}
}

// run loads configuration, builds the application and serves until SIGINT or
// SIGTERM.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, closer := logger.Setup(cfg.Server)
	defer closer.Close()
	slog.SetDefault(l)

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("store_driver", cfg.Store.Driver),
		slog.Bool("api_key_present", cfg.LLM.APIKey != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
