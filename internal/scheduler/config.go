package scheduler

import (
	"errors"
	"time"

	appconfig "github.com/techtech-dev-team/stranger-backoffice/internal/config"
)

var ErrInvalidConfig = errors.New("scheduler configuration incomplete")

// Config controls the run loop cadence and the daily job due times.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	LockTTL     time.Duration
	EnabledJobs []string

	SummaryRunAt    string
	DayBalanceRunAt string
	VisitResetRunAt string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:     time.Minute,
		JobTimeout:      10 * time.Minute,
		LockTTL:         15 * time.Minute,
		SummaryRunAt:    "07:15",
		DayBalanceRunAt: "07:30",
		VisitResetRunAt: "07:45",
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.SummaryRunAt == "" {
		c.SummaryRunAt = defaults.SummaryRunAt
	}
	if c.DayBalanceRunAt == "" {
		c.DayBalanceRunAt = defaults.DayBalanceRunAt
	}
	if c.VisitResetRunAt == "" {
		c.VisitResetRunAt = defaults.VisitResetRunAt
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		RunInterval:     cfg.SchedulerInterval,
		JobTimeout:      cfg.SchedulerJobTimeout,
		SummaryRunAt:    cfg.SummaryRunAt,
		DayBalanceRunAt: cfg.DayBalanceRunAt,
		VisitResetRunAt: cfg.VisitResetRunAt,
	}.withDefaults()
}

// dueTime parses an "HH:MM" wall-clock string. Invalid values fall back
// to the provided default.
func dueTime(value, fallback string) (hour, minute int) {
	parse := func(v string) (int, int, bool) {
		if len(v) != 5 || v[2] != ':' {
			return 0, 0, false
		}
		h := int(v[0]-'0')*10 + int(v[1]-'0')
		m := int(v[3]-'0')*10 + int(v[4]-'0')
		if h < 0 || h > 23 || m < 0 || m > 59 {
			return 0, 0, false
		}
		for _, ch := range []byte{v[0], v[1], v[3], v[4]} {
			if ch < '0' || ch > '9' {
				return 0, 0, false
			}
		}
		return h, m, true
	}
	if h, m, ok := parse(value); ok {
		return h, m
	}
	h, m, _ := parse(fallback)
	return h, m
}
