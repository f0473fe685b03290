package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"devicepool-backend/internal/jobs"
	"devicepool-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Test window edge detection, every minute
	_, err := s.cron.AddFunc(cfg.SyncTestWindow, s.jobs.SyncTestWindow)
	if err != nil {
		logger.Error("Failed to register SyncTestWindow job", "error", err)
	}

	// Daily stale rental audit
	_, err = s.cron.AddFunc(cfg.AuditStaleRentals, s.jobs.AuditStaleRentals)
	if err != nil {
		logger.Error("Failed to register AuditStaleRentals job", "error", err)
	}

	logger.Info("All cron jobs registered successfully")
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Cron scheduler started")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}
