package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	appconfig "github.com/techtech-dev-team/stranger-backoffice/internal/config"
	obsmetrics "github.com/techtech-dev-team/stranger-backoffice/internal/observability/metrics"
	reconciledomain "github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/domain"
	summarydomain "github.com/techtech-dev-team/stranger-backoffice/internal/summary/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobMatchSweep   = "match_sweep"
	JobDailySummary = "daily_summary"
	JobDayBalance   = "day_balance"
	JobVisitReset   = "visit_reset"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	AppConfig  appconfig.Config
	Config     Config `optional:"true"`
	Locker     *RunLocker
	MatcherSvc reconciledomain.Service
	SummarySvc summarydomain.Service
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	loc        *time.Location
	locker     *RunLocker
	matcherSvc reconciledomain.Service
	summarySvc summarydomain.Service

	// lastRunDay records, per due-time job, the local date it last ran.
	lastRunDay map[string]string
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Locker == nil || p.MatcherSvc == nil || p.SummarySvc == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        cfg,
		clock:      p.Clock,
		loc:        p.AppConfig.Location(),
		locker:     p.Locker,
		matcherSvc: p.MatcherSvc,
		summarySvc: p.SummarySvc,
		lastRunDay: make(map[string]string),
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes one scheduler tick: the match sweep every tick, the
// daily jobs at the first tick past their due time, once per local day.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	now := s.clock.Now().In(s.loc)

	if s.isJobEnabled(JobMatchSweep) {
		err = errors.Join(err, s.runJob(parent, JobMatchSweep, s.matcherSvc.Sweep))
	}

	// Aggregation first, reset last: the visit reset blanks the exit legs
	// of the closed window, so summary and day balance must have read it
	// before the reset fires.
	dailyJobs := []struct {
		Name  string
		RunAt string
		Run   func(context.Context) error
	}{
		{JobDailySummary, s.cfg.SummaryRunAt, func(ctx context.Context) error {
			// the business day that closed this morning
			return s.summarySvc.RunSummary(ctx, s.clock.Now().In(s.loc).AddDate(0, 0, -1))
		}},
		{JobDayBalance, s.cfg.DayBalanceRunAt, func(ctx context.Context) error {
			return s.summarySvc.RunDayBalance(ctx, s.clock.Now())
		}},
		{JobVisitReset, s.cfg.VisitResetRunAt, func(ctx context.Context) error {
			return s.summarySvc.RunVisitReset(ctx)
		}},
	}

	for _, job := range dailyJobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		if !s.dailyJobDue(job.Name, job.RunAt, now) {
			continue
		}
		jobErr := s.runJob(parent, job.Name, job.Run)
		if jobErr == nil {
			s.lastRunDay[job.Name] = now.Format("2006-01-02")
		}
		err = errors.Join(err, jobErr)
	}

	return err
}

// dailyJobDue reports whether a due-time job should fire at now: past its
// configured wall-clock time and not yet run this local day.
func (s *Scheduler) dailyJobDue(name, runAt string, now time.Time) bool {
	hour, minute := dueTime(runAt, "07:00")
	due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.loc)
	if now.Before(due) {
		return false
	}
	return s.lastRunDay[name] != now.Format("2006-01-02")
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	schedMetrics := obsmetrics.Scheduler()

	token, ok, lockErr := s.locker.TryLock(ctx, "scheduler:lock:"+name, s.cfg.LockTTL)
	if lockErr != nil {
		schedMetrics.IncJobError(name)
		return fmt.Errorf("%s: acquire run lock: %w", name, lockErr)
	}
	if !ok {
		schedMetrics.IncJobSkipped(name)
		s.log.Debug("job skipped, previous run still holds the lock", zap.String("job", name))
		return nil
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), "scheduler:lock:"+name, token); err != nil {
			s.log.Warn("run lock release failed", zap.String("job", name), zap.Error(err))
		}
	}()

	schedMetrics.IncJobRun(name)
	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		schedMetrics.IncJobError(name)
		return nil
	}

	schedMetrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty EnabledJobs means all jobs run (monolith mode)
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
