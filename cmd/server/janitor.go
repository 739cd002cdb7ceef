package main

import (
	"context"
	"log/slog"
	"time"
)

// sessionPurger deletes sessions idle for longer than ttl.
type sessionPurger interface {
	PurgeExpired(ctx context.Context, ttl time.Duration) (int64, error)
}

// runJanitor purges expired sessions every interval until ctx is done.
func runJanitor(ctx context.Context, purger sessionPurger, ttl, interval time.Duration, logger *slog.Logger) {
	log := logger.With(slog.String("component", "session_janitor"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("session janitor started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("session janitor stopped")
			return
		case <-ticker.C:
			if _, err := purger.PurgeExpired(ctx, ttl); err != nil && ctx.Err() == nil {
				log.Error("failed to purge expired sessions", slog.String("error", err.Error()))
			}
		}
	}
}
