package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/middleware"
)

// SchedulerState is the lifecycle state of the daily sync loop.
type SchedulerState int32

const (
	SchedulerIdle SchedulerState = iota
	SchedulerRunning
	SchedulerWaiting
	SchedulerStopped
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "Idle"
	case SchedulerRunning:
		return "Running"
	case SchedulerWaiting:
		return "Waiting"
	case SchedulerStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int32(s))
	}
}

const (
	defaultDailyTime        = "02:00"
	defaultFallbackInterval = time.Hour
)

// Scheduler bootstraps an empty rate log and then runs one pass per day at a
// fixed local wall-clock time.
type Scheduler struct {
	BaseService
	sync      portssvc.SyncSvc
	rateRepo  portsrepo.RateLogReader
	dailyTime string
	fallback  time.Duration
	now       func() time.Time
	after     func(time.Duration) <-chan time.Time
	state     atomic.Int32
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithDailyTime sets the HH:mm local time of the daily pass.
func WithDailyTime(hhmm string) SchedulerOption {
	return func(s *Scheduler) { s.dailyTime = hhmm }
}

// WithFallbackInterval sets the wait after a failed pass.
func WithFallbackInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.fallback = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithTimer overrides how the loop waits, mainly for tests.
func WithTimer(after func(time.Duration) <-chan time.Time) SchedulerOption {
	return func(s *Scheduler) { s.after = after }
}

// NewScheduler creates the daily sync loop.
func NewScheduler(syncSvc portssvc.SyncSvc, rateRepo portsrepo.RateLogReader, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sync:      syncSvc,
		rateRepo:  rateRepo,
		dailyTime: defaultDailyTime,
		fallback:  defaultFallbackInterval,
		now:       time.Now,
		after:     time.After,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

func (s *Scheduler) setState(state SchedulerState) {
	s.state.Store(int32(state))
}

// Start runs the loop until ctx is cancelled. Passes run on a context
// detached from ctx so that a pass in flight completes before the loop exits.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := s.GetLogger(ctx).With(slog.String("component", "scheduler"))
	ctx = middleware.WithLogger(ctx, logger)
	defer s.setState(SchedulerStopped)

	hasData, err := s.rateRepo.HasAnyData(ctx)
	if err != nil {
		s.LogError(ctx, err, "Checking for existing rates failed, running bootstrap pass")
	}
	if err != nil || !hasData {
		s.LogInfo(ctx, "Rate log is empty, running bootstrap pass")
		if !s.runPass(ctx) && !s.sleep(ctx, s.fallback) {
			return nil
		}
	}

	for {
		delay := NextRunDelay(s.now(), s.dailyTime)
		s.LogInfo(ctx, "Next sync pass scheduled",
			slog.Duration("delay", delay),
			slog.Time("at", s.now().Add(delay)))
		if !s.sleep(ctx, delay) {
			return nil
		}

		if !s.runPass(ctx) {
			s.LogWarn(ctx, "Waiting fallback interval after failed pass", slog.Duration("interval", s.fallback))
			if !s.sleep(ctx, s.fallback) {
				return nil
			}
		}
	}
}

// runPass reports whether the pass committed.
func (s *Scheduler) runPass(ctx context.Context) bool {
	s.setState(SchedulerRunning)
	defer s.setState(SchedulerIdle)

	result, err := s.sync.RunPass(context.WithoutCancel(ctx))
	if err != nil {
		s.LogError(ctx, err, "Scheduled sync pass failed")
		return false
	}
	s.LogInfo(ctx, "Scheduled sync pass finished",
		slog.Int("success_count", result.SuccessCount),
		slog.Int("total_pairs", result.TotalPairs),
		slog.Float64("success_rate", result.SuccessRate()))
	return true
}

// sleep waits for d and reports false when ctx was cancelled first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	s.setState(SchedulerWaiting)
	select {
	case <-ctx.Done():
		s.LogInfo(ctx, "Scheduler stopping")
		return false
	case <-s.after(d):
		return true
	}
}

// NextRunDelay returns the time until the next occurrence of hhmm in now's
// location. A time that is not strictly in the future targets tomorrow.
// An unparseable hhmm yields 24h.
func NextRunDelay(now time.Time, hhmm string) time.Duration {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, t.Hour(), t.Minute(), 0, 0, now.Location())
	}
	return next.Sub(now)
}
