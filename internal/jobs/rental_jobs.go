package jobs

import (
	"context"
	"time"

	"devicepool-backend/internal/logger"
)

// AuditStaleRentals flags active rentals that have been open longer than the
// configured threshold. The pool has no due dates, so this is a daily nudge
// for the admins rather than an enforcement step.
func (jr *JobRunner) AuditStaleRentals() {
	jr.runWithRecovery("AuditStaleRentals", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rentals, err := jr.services.Rental.ListActiveRentals(ctx)
		if err != nil {
			logger.Error("Failed to list active rentals for audit", "error", err)
			return
		}

		cutoff := time.Now().AddDate(0, 0, -jr.config.Scheduler.StaleRentalDays)
		stale := 0
		for _, rental := range rentals {
			if rental.RentedAt.Before(cutoff) {
				stale++
				logger.Warn("Stale rental detected",
					"rental_id", rental.ID,
					"device_id", rental.DeviceID,
					"renter", rental.RenterName,
					"rented_at", rental.RentedAt)
			}
		}
		if stale > 0 {
			logger.Info("Stale rental audit finished", "stale_count", stale, "active_count", len(rentals))
		}
	})
}
