// Package scheduler drives periodic pipeline runs off a cron expression.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"SignalPull/internal/usecase"
	"SignalPull/pkg/logger"
)

// Scheduler wraps a cron runner around the pipeline. Overlapping triggers are
// skipped, not queued: the pipeline refuses a second concurrent run and the
// scheduler logs and moves on.
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	pipe    *usecase.Pipeline
	timeout time.Duration
	baseCtx context.Context
}

func New(log *logger.Logger, pipe *usecase.Pipeline, timeout time.Duration, baseCtx context.Context) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(),
		log:     log,
		pipe:    pipe,
		timeout: timeout,
		baseCtx: baseCtx,
	}
}

// Add registers a run trigger on the given cron spec (standard 5-field form).
func (s *Scheduler) Add(spec string) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
		defer cancel()

		res, err := s.pipe.Run(ctx)
		if errors.Is(err, usecase.ErrRunInProgress) {
			s.log.Warn("scheduled run skipped, previous run still active")
			return
		}
		if err != nil {
			s.log.Error("scheduled run failed", logger.Error(err))
			return
		}
		s.log.Info("scheduled run finished",
			logger.Int("signals", len(res.Signals)),
			logger.Int("actions", len(res.Actions)))
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts new triggers and waits for a running job to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
