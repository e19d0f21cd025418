package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/logging"
)

// Janitor periodically prunes idle sessions
type Janitor struct {
	store    Store
	interval time.Duration
	ttl      time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

// NewJanitor creates a janitor removing sessions idle for longer than ttl
func NewJanitor(store Store, interval, ttl time.Duration, logger *zap.Logger) *Janitor {
	logger = logging.OrNop(logger)
	return &Janitor{
		store:    store,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs the janitor until ctx is cancelled. Wait blocks until it exits.
func (j *Janitor) Start(ctx context.Context) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// Wait blocks until a started janitor has stopped
func (j *Janitor) Wait() {
	<-j.done
}

// RunOnce prunes idle sessions a single time
func (j *Janitor) RunOnce(ctx context.Context) int {
	n, err := j.store.Prune(ctx, time.Now().Add(-j.ttl))
	if err != nil {
		j.logger.Warn("Session prune failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		j.logger.Info("Pruned idle sessions", zap.Int("count", n))
	}
	return n
}
