// Package scheduler runs periodic backfill syncs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/zedalytics/internal/datasource"
)

// Scheduler manages scheduled backfill jobs
type Scheduler struct {
	cron      *cron.Cron
	loader    *datasource.BackfillLoader
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(loader *datasource.BackfillLoader, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		loader: loader,
		logger: logger,
		jobIDs: make([]cron.EntryID, 0),
	}
}

// ScheduleSync schedules a recurring backfill sync
func (s *Scheduler) ScheduleSync(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()

		s.logger.Info("Scheduled backfill sync starting")
		if _, err := s.loader.Sync(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled backfill sync failed")
		}
	}

	id, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to schedule sync with expression %q: %w", cronExpression, err)
	}

	s.jobIDs = append(s.jobIDs, id)
	s.logger.WithField("schedule", cronExpression).Info("Backfill sync scheduled")
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	s.cron.Start()
	s.isRunning = true
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
}
