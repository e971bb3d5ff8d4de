package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefreshFunc runs one refresh cycle
type RefreshFunc func(ctx context.Context) error

// Scheduler triggers refresh cycles on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	refresh RefreshFunc
	log     *logrus.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Nothing runs until Start.
func New(refresh RefreshFunc, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		refresh: refresh,
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the schedule and starts the cron runner.
// schedule accepts standard five-field expressions and descriptors like "@every 30m".
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()
	s.log.WithField("schedule", schedule).Info("Refresh schedule started")
	return nil
}

func (s *Scheduler) run() {
	s.log.Info("Cron triggered: starting refresh")
	if err := s.refresh(s.ctx); err != nil {
		s.log.WithError(err).Error("Scheduled refresh failed")
		return
	}
	s.log.Info("Scheduled refresh completed")
}

// Stop cancels any running refresh and waits for it to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	<-s.cron.Stop().Done()
}
