package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	appconfig "github.com/techtech-dev-team/stranger-backoffice/internal/config"
	obsmetrics "github.com/techtech-dev-team/stranger-backoffice/internal/observability/metrics"
	reconciledomain "github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/domain"
	summarydomain "github.com/techtech-dev-team/stranger-backoffice/internal/summary/domain"
	"go.uber.org/zap"
)

type mockMatcherSvc struct {
	sweeps  atomic.Int64
	block   chan struct{}
	release chan struct{}
}

func (m *mockMatcherSvc) Sweep(ctx context.Context) error {
	m.sweeps.Add(1)
	if m.block != nil {
		close(m.block)
		<-m.release
	}
	return nil
}

func (m *mockMatcherSvc) ListMissed(ctx context.Context, filter reconciledomain.ListMissedFilter) ([]reconciledomain.MissedEntry, error) {
	return nil, nil
}

type mockSummarySvc struct {
	summaryRuns    atomic.Int64
	dayBalanceRuns atomic.Int64
	resetRuns      atomic.Int64
	lastSummaryDay string
	calls          []string
}

func (m *mockSummarySvc) RunSummary(ctx context.Context, businessDate time.Time) error {
	m.summaryRuns.Add(1)
	m.lastSummaryDay = businessDate.Format("2006-01-02")
	m.calls = append(m.calls, JobDailySummary)
	return nil
}

func (m *mockSummarySvc) RunDayBalance(ctx context.Context, now time.Time) error {
	m.dayBalanceRuns.Add(1)
	m.calls = append(m.calls, JobDayBalance)
	return nil
}

func (m *mockSummarySvc) RunVisitReset(ctx context.Context) error {
	m.resetRuns.Add(1)
	m.calls = append(m.calls, JobVisitReset)
	return nil
}

func (m *mockSummarySvc) ListSummaries(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]summarydomain.DailySummary, error) {
	return nil, nil
}

func (m *mockSummarySvc) ListBalances(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]summarydomain.CentreBalance, error) {
	return nil, nil
}

func newTestScheduler(t *testing.T, fake *clock.FakeClock, matcher *mockMatcherSvc, summary *mockSummarySvc) *Scheduler {
	t.Helper()
	obsmetrics.ResetSchedulerMetricsForTest()

	sched, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      fake,
		AppConfig:  appconfig.Config{Timezone: "UTC"},
		Config:     DefaultConfig(),
		Locker:     NewRunLocker(appconfig.Config{}),
		MatcherSvc: matcher,
		SummarySvc: summary,
	})
	require.NoError(t, err)
	return sched
}

func TestRunOnce_MatchSweepEveryTick(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	require.NoError(t, sched.RunOnce(context.Background()))
	require.NoError(t, sched.RunOnce(context.Background()))

	assert.Equal(t, int64(2), matcher.sweeps.Load())
	// 03:00 is before every daily due time
	assert.Zero(t, summary.summaryRuns.Load())
	assert.Zero(t, summary.dayBalanceRuns.Load())
	assert.Zero(t, summary.resetRuns.Load())
}

func TestRunOnce_DailyJobsFireOncePastDueTime(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 7, 14, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Zero(t, summary.summaryRuns.Load())

	// 07:15: summary due, balance (07:30) and reset (07:45) not yet
	fake.Advance(time.Minute)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.summaryRuns.Load())
	assert.Equal(t, "2024-03-10", summary.lastSummaryDay)
	assert.Zero(t, summary.dayBalanceRuns.Load())

	// 07:31: balance catches up on this tick
	fake.Advance(16 * time.Minute)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.dayBalanceRuns.Load())
	assert.Zero(t, summary.resetRuns.Load())

	// 07:46: reset fires last, earlier jobs do not repeat
	fake.Advance(15 * time.Minute)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.resetRuns.Load())
	assert.Equal(t, int64(1), summary.summaryRuns.Load())
	assert.Equal(t, int64(1), summary.dayBalanceRuns.Load())
}

// A late-starting process finds all three daily jobs due on the same
// tick; the reset must still run after the aggregations it would blank.
func TestRunOnce_DailyJobsKeepAggregateBeforeResetOrder(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, []string{JobDailySummary, JobDayBalance, JobVisitReset}, summary.calls)
}

func TestRunOnce_DailyJobsRunAgainNextDay(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	require.NoError(t, sched.RunOnce(context.Background()))
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.summaryRuns.Load())

	fake.Advance(24 * time.Hour)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(2), summary.summaryRuns.Load())
	assert.Equal(t, int64(2), summary.dayBalanceRuns.Load())
	assert.Equal(t, int64(2), summary.resetRuns.Load())
}

func TestRunJob_OverlappingRunSkipped(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{
		block:   make(chan struct{}),
		release: make(chan struct{}),
	}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	done := make(chan error, 1)
	go func() {
		done <- sched.RunOnce(context.Background())
	}()
	<-matcher.block

	// second tick while the sweep still holds the lock
	require.NoError(t, sched.runJob(context.Background(), JobMatchSweep, func(ctx context.Context) error {
		t.Fatal("overlapping run must not execute")
		return nil
	}))

	close(matcher.release)
	require.NoError(t, <-done)
	assert.Equal(t, int64(1), matcher.sweeps.Load())
}

func TestIsJobEnabled(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &mockSummarySvc{}
	sched := newTestScheduler(t, fake, matcher, summary)

	assert.True(t, sched.isJobEnabled(JobMatchSweep))

	sched.cfg.EnabledJobs = []string{JobDailySummary}
	assert.False(t, sched.isJobEnabled(JobMatchSweep))
	assert.True(t, sched.isJobEnabled(JobDailySummary))
}

func TestDueTimeParsing(t *testing.T) {
	h, m := dueTime("07:15", "07:00")
	assert.Equal(t, 7, h)
	assert.Equal(t, 15, m)

	h, m = dueTime("garbage", "06:45")
	assert.Equal(t, 6, h)
	assert.Equal(t, 45, m)

	h, m = dueTime("25:00", "07:00")
	assert.Equal(t, 7, h)
	assert.Equal(t, 0, m)
}

type failingSummarySvc struct {
	mockSummarySvc
	failures int
}

func (m *failingSummarySvc) RunSummary(ctx context.Context, businessDate time.Time) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("aggregation query failed")
	}
	return m.mockSummarySvc.RunSummary(ctx, businessDate)
}

func TestRunOnce_FailedDailyJobRetriesNextTick(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 7, 20, 0, 0, time.UTC))
	matcher := &mockMatcherSvc{}
	summary := &failingSummarySvc{failures: 1}

	obsmetrics.ResetSchedulerMetricsForTest()
	sched, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      fake,
		AppConfig:  appconfig.Config{Timezone: "UTC"},
		Config:     Config{EnabledJobs: []string{JobDailySummary}},
		Locker:     NewRunLocker(appconfig.Config{}),
		MatcherSvc: matcher,
		SummarySvc: summary,
	})
	require.NoError(t, err)

	// first tick fails, the day is not marked as done
	require.Error(t, sched.RunOnce(context.Background()))
	assert.Zero(t, summary.summaryRuns.Load())

	fake.Advance(time.Minute)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.summaryRuns.Load())

	// and once done it stays done for the day
	fake.Advance(time.Minute)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), summary.summaryRuns.Load())
}
