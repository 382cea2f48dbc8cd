package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/go-co-op/gocron"
)

// Refreshable is a service that re-derives its state on every scheduler pass.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	Cron     *gocron.Scheduler
	Interval time.Duration
}

func New(interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid refresh interval %s", interval)
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		Cron:     s,
		Interval: interval,
	}, nil
}

// StartJob registers one job running every service each interval and starts the
// cron in the background. The first pass runs immediately.
func (s *Scheduler) StartJob(ctx context.Context, services []Refreshable) error {
	_, err := s.Cron.Every(s.Interval).Do(func() {
		s.runAllJobs(ctx, services)
	})
	if err != nil {
		logger.Error("Failed to schedule job: %v", err)
		return err
	}

	s.Cron.StartAsync()
	return nil
}

func (s *Scheduler) runAllJobs(ctx context.Context, services []Refreshable) {
	if ctx.Err() != nil {
		return
	}
	logger.Debug("--- Refresh Job Started ---")
	defer logger.Debug("--- Refresh Job Finished ---")

	for _, service := range services {
		if err := service.Refresh(ctx); err != nil {
			logger.Error("Error refreshing service: %v", err)
		}
	}
}

func (s *Scheduler) RunImmediateJob(ctx context.Context, services []Refreshable) {
	logger.Info("--- Immediate Refresh Job Started ---")
	defer logger.Info("--- Immediate Refresh Job Finished ---")

	s.runAllJobs(ctx, services)
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
}
