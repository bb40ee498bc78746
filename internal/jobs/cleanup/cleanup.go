package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ConnectionSweeper drops registry entries whose connections already ended.
type ConnectionSweeper interface {
	Sweep() int
}

type EventDropCounter interface {
	Dropped() uint64
}

// Job reconciles the connection registry with sessions that died without a
// clean unregister and reports bus drops that happened since the last pass.
type Job struct {
	sweeper     ConnectionSweeper
	drops       EventDropCounter
	interval    time.Duration
	lastDropped uint64
	logger      *zap.Logger
}

func New(sweeper ConnectionSweeper, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) AttachDropCounter(drops EventDropCounter) {
	j.drops = drops
}

// Run executes one pass.
func (j *Job) Run(_ context.Context) error {
	if j.sweeper != nil {
		if removed := j.sweeper.Sweep(); removed > 0 {
			j.logger.Info("cleanup stale connections completed", zap.Int("removed", removed))
		}
	}

	if j.drops != nil {
		total := j.drops.Dropped()
		if total > j.lastDropped {
			j.logger.Warn("event bus dropped events for slow subscribers",
				zap.Uint64("dropped", total-j.lastDropped),
				zap.Uint64("dropped_total", total),
			)
		}
		j.lastDropped = total
	}

	return nil
}

// Loop runs a pass every interval until ctx is done.
func (j *Job) Loop(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup pass failed", zap.Error(err))
			}
		}
	}
}
