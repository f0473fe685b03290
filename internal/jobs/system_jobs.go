package jobs

import (
	"context"
	"time"

	"devicepool-backend/internal/logger"
)

// SyncTestWindow re-derives the effective test mode so that configured test
// windows opening or closing are broadcast to subscribers without an admin
// touching the config.
func (jr *JobRunner) SyncTestWindow() {
	jr.runWithRecovery("SyncTestWindow", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		changed, err := jr.services.System.SyncEffectiveMode(ctx)
		if err != nil {
			logger.Error("Failed to sync effective test mode", "error", err)
			return
		}
		if changed {
			logger.Info("Effective test mode changed by window edge")
		}
	})
}
