package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CycleRunner is the part of CycleUseCase the scheduler drives.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// CycleRunnerFunc adapts a function to CycleRunner.
type CycleRunnerFunc func(ctx context.Context) error

func (f CycleRunnerFunc) RunCycle(ctx context.Context) error { return f(ctx) }

// Scheduler fires a cycle once a day at a fixed wall-clock time.
type Scheduler struct {
	runner   CycleRunner
	schedule cron.Schedule
	location *time.Location
	logger   *zap.Logger
}

// NewScheduler parses at as "HH:MM" in the named IANA timezone.
func NewScheduler(runner CycleRunner, at, timezone string, logger *zap.Logger) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone %q: %w", timezone, err)
	}
	schedule, err := cron.ParseStandard(fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc, t.Minute(), t.Hour()))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q %q: %w", at, timezone, err)
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		location: loc,
		logger:   logger.Named("scheduler"),
	}, nil
}

// Next returns the first trigger time strictly after from.
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.schedule.Next(from.In(s.location))
}

// Start blocks, triggering the runner daily until ctx is cancelled. A running
// cycle is waited for before Start returns.
func (s *Scheduler) Start(ctx context.Context) {
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger{s.logger.Sugar()}),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.Trigger(ctx) }))
	c.Start()
	s.logger.Info("next cycle scheduled", zap.Time("at", s.Next(time.Now())))

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Trigger runs one cycle, logging a rejection if one is already in flight.
func (s *Scheduler) Trigger(ctx context.Context) {
	err := s.runner.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Warn("scheduled trigger rejected, a cycle is still running")
	default:
		s.logger.Error("scheduled cycle failed", zap.Error(err))
	}
}

// cronLogger routes cron's own diagnostics into zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
