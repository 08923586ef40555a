package store

import (
	"context"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"go.uber.org/zap"
)

const (
	readyAttempts = 5
	readyBackoff  = 250 * time.Millisecond
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Migrator prepares the schema of a store.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// WaitReady pings p with linear backoff until it answers or the attempts run out.
func WaitReady(ctx context.Context, name string, p Pinger, logger *zap.Logger) error {
	return retry.Retry(func(attempt uint) error {
		err := p.Ping(ctx)
		if err != nil {
			logger.Warn("backing service not ready",
				zap.String("service", name),
				zap.Uint("attempt", attempt),
				zap.Error(err),
			)
		}

		return err
	},
		strategy.Limit(readyAttempts),
		strategy.Backoff(backoff.Linear(readyBackoff)),
	)
}
