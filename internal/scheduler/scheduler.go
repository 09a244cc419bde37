package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/eventlog"
)

// Scheduler keeps the event-log snapshot within its staleness window by
// refreshing it on a fixed schedule.
type Scheduler struct {
	cron   *cron.Cron
	log    eventlog.Log
	cfg    config.CacheConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.CacheConfig, log eventlog.Log, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(),
		log:    log,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.RefreshSchedule))

	if _, err := s.cron.AddFunc(s.cfg.RefreshSchedule, s.refreshSnapshot); err != nil {
		s.logger.Error("failed to schedule event cache refresh", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.log.Refresh(ctx); err != nil {
		s.logger.Error("event cache refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("event cache refreshed")
}
