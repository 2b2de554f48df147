// Package jobs holds the scheduled maintenance work of the scheduling service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = time.Minute

type AppointmentCompleter interface {
	CompletePastAppointments(ctx context.Context, now time.Time) (int64, error)
}

type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// CompletionSweeper marks appointments whose end time has passed as completed.
type CompletionSweeper struct {
	completer   AppointmentCompleter
	invalidator CacheInvalidator
	logger      *zap.Logger
	now         func() time.Time
}

// NewCompletionSweeper builds a sweeper. invalidator may be nil when the slot
// cache is disabled.
func NewCompletionSweeper(completer AppointmentCompleter, invalidator CacheInvalidator, logger *zap.Logger, now func() time.Time) *CompletionSweeper {
	if now == nil {
		now = time.Now
	}
	return &CompletionSweeper{
		completer:   completer,
		invalidator: invalidator,
		logger:      logger,
		now:         now,
	}
}

// Run performs one sweep and returns how many appointments were completed.
func (s *CompletionSweeper) Run(ctx context.Context) (int64, error) {
	n, err := s.completer.CompletePastAppointments(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("complete past appointments: %w", err)
	}
	if n > 0 && s.invalidator != nil {
		if err := s.invalidator.InvalidateAll(ctx); err != nil {
			s.logger.Warn("slot cache invalidation failed", zap.Error(err))
		}
	}
	return n, nil
}

// Register schedules the sweep on c using a standard five field cron spec.
func (s *CompletionSweeper) Register(c *cron.Cron, schedule string) (cron.EntryID, error) {
	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		n, err := s.Run(ctx)
		if err != nil {
			s.logger.Error("completion sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("completion sweep finished", zap.Int64("completed", n))
	})
	if err != nil {
		return 0, fmt.Errorf("add func: %w", err)
	}
	return id, nil
}
