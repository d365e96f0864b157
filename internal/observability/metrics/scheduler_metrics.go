package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics captures background job health signals.
type SchedulerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobSkipped  *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	runLoopLag  prometheus.Observer
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer)
	})
	return schedulerMetrics
}

// ResetSchedulerMetricsForTest resets the scheduler metrics singleton for tests.
func ResetSchedulerMetricsForTest() {
	if m := schedulerMetrics; m != nil {
		prometheus.Unregister(m.jobRuns)
		prometheus.Unregister(m.jobErrors)
		prometheus.Unregister(m.jobSkipped)
		prometheus.Unregister(m.jobDuration)
		if lag, ok := m.runLoopLag.(prometheus.Collector); ok {
			prometheus.Unregister(lag)
		}
	}
	schedulerMetricsOnce = sync.Once{}
	schedulerMetrics = nil
}

func newSchedulerMetrics(registerer prometheus.Registerer) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &SchedulerMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stranger_scheduler_job_runs_total",
			Help: "Background job executions by job name.",
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stranger_scheduler_job_errors_total",
			Help: "Background job failures by job name.",
		}, []string{"job"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stranger_scheduler_job_skipped_total",
			Help: "Background job runs skipped because a previous run still held the lock.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stranger_scheduler_job_duration_seconds",
			Help:    "Background job run duration.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
	}

	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stranger_scheduler_run_loop_lag_seconds",
		Help:    "How far behind schedule the run loop fired.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
	})
	m.runLoopLag = lag

	registerer.MustRegister(m.jobRuns, m.jobErrors, m.jobSkipped, m.jobDuration, lag)
	return m
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SchedulerMetrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil || lag <= 0 {
		return
	}
	m.runLoopLag.Observe(lag.Seconds())
}
