package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/daylogapp/daylog/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// RollupConfig controls how frequently the activity rollup runs.
type RollupConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ActivityRollup periodically rebuilds the per-day completion counts that
// back the activity endpoint, so reads never aggregate the todos table.
type ActivityRollup struct {
	activityRepo repository.ActivityRepository
	monitor      ConnectionHealth
	logger       *zap.Logger
	cron         *cron.Cron
	cfg          RollupConfig
}

func NewActivityRollup(
	activityRepo repository.ActivityRepository,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg RollupConfig,
) *ActivityRollup {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ActivityRollup{
		activityRepo: activityRepo,
		monitor:      monitor,
		logger:       logger,
		cfg:          cfg,
		cron:         cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			r.logger.Error("activity rollup failed", zap.Error(err))
		}
	})

	return r
}

// Start launches the cron scheduler and performs an initial rollup so the
// activity_days table is populated before the first tick.
func (r *ActivityRollup) Start() {
	if r == nil || r.cron == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		r.logger.Warn("initial activity rollup failed", zap.Error(err))
	}

	r.cron.Start()
	r.logger.Info("activity rollup started", zap.Duration("interval", r.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (r *ActivityRollup) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("activity rollup stopped")
}

// Run rebuilds the rollup synchronously.
func (r *ActivityRollup) Run(ctx context.Context) error {
	if r == nil || r.activityRepo == nil {
		return nil
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping activity rollup (offline)")
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	if err := r.activityRepo.Refresh(ctx); err != nil {
		return err
	}
	r.logger.Debug("activity rollup complete", zap.Duration("took", time.Since(start)))
	return nil
}
