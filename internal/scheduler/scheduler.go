// Package scheduler runs ingestion periodically on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping runs are skipped.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	runOnStart bool
	task       Task
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// New creates a Scheduler. spec is a standard five field cron expression or a
// descriptor such as "@every 6h".
func New(spec string, runOnStart bool, task Task, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:       spec,
		runOnStart: runOnStart,
		task:       task,
		logger:     logger,
	}
}

// Start registers the task and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec), zap.Time("next", s.cron.Entry(id).Next))

	if s.runOnStart {
		job := s.cron.Entry(id).WrappedJob
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}
	return nil
}

// Stop halts the loop and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	s.logger.Info("scheduled run started")
	if err := s.task(ctx); err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err), zap.Duration("took", time.Since(started)))
		return
	}
	s.logger.Info("scheduled run finished", zap.Duration("took", time.Since(started)))
}

// cronLogger routes cron's own messages to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
