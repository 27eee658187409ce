package app

import (
	"context"

	"go.uber.org/zap"

	"kv-shepherd.io/shepherd/internal/pkg/logger"
)

// Start has nothing to run yet: every write synchronizes the Command
// Model inline (service.Service.append), so there is no background
// projector loop to launch. Kept symmetric with Shutdown for cmd/server.
func (a *Application) Start(_ context.Context) error {
	return nil
}

// Shutdown releases whichever storage connection Bootstrap opened.
func (a *Application) Shutdown() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			logger.Warn("closing widecolumn client returned error", zap.Error(err))
		}
	}
}
