package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oldmanfooty/carnival-sync/internal/logger"
	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// dailySchedule fires once a day at 03:00 local time, when MySideline is
// quiet and a same-day carnival has not started yet.
const dailySchedule = "0 3 * * *"

// warmupDelay gives the process a moment to settle before the startup
// catch-up check runs.
const warmupDelay = 2 * time.Second

// Scheduler owns the daily trigger and the startup catch-up run.
type Scheduler struct {
	service *Service
	cron    *cron.Cron
}

// NewScheduler creates a scheduler over the given service. Nothing runs
// until Start is called.
func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{service: service}
}

// Start registers the daily trigger and kicks off the startup check. The
// startup check runs in the background after a short warmup; a sync already
// triggered by cron simply wins the single-flight race.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(dailySchedule, func() {
		if _, err := s.service.Sync(ctx, store.RunTypeScheduled); err != nil {
			logger.Error("Scheduled sync failed", nil, err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering daily sync schedule: %w", err)
	}
	s.cron.Start()
	logger.Info("Daily sync scheduled", logger.Fields{"schedule": dailySchedule})

	go func() {
		timer := time.NewTimer(warmupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := s.service.CheckAndRunInitialSync(ctx); err != nil {
			logger.Error("Initial sync check failed", nil, err)
		}
	}()

	return nil
}

// Stop halts the daily trigger and waits for any running job to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
