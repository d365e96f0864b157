package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DateFormat keys daily rows; business dates are rendered in the
// configured local timezone.
const DateFormat = "2006-01-02"

type DailySummary struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CentreID         snowflake.ID `gorm:"not null;uniqueIndex:uq_daily_summaries_centre_date" json:"centre_id"`
	Date             string       `gorm:"not null;uniqueIndex:uq_daily_summaries_centre_date" json:"date"`
	CashTotal        int64        `gorm:"not null;default:0" json:"cash_total"`
	OnlineTotal      int64        `gorm:"not null;default:0" json:"online_total"`
	CashCommission   int64        `gorm:"not null;default:0" json:"cash_commission"`
	OnlineCommission int64        `gorm:"not null;default:0" json:"online_commission"`
	ExpenseTotal     int64        `gorm:"not null;default:0" json:"expense_total"`
	VisitCount       int64        `gorm:"not null;default:0" json:"visit_count"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

func (DailySummary) TableName() string { return "daily_summaries" }

type CentreBalance struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CentreID    snowflake.ID `gorm:"not null;uniqueIndex:uq_centre_balances_centre_date" json:"centre_id"`
	Date        string       `gorm:"not null;uniqueIndex:uq_centre_balances_centre_date" json:"date"`
	Amount      int64        `gorm:"not null;default:0" json:"amount"`
	PayCriteria string       `gorm:"not null;default:minus" json:"pay_criteria"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (CentreBalance) TableName() string { return "centre_balances" }

type Service interface {
	// RunSummary aggregates one business day (day-start hour to +24h) of
	// visits and expenses into daily_summaries rows. Idempotent.
	RunSummary(ctx context.Context, businessDate time.Time) error
	// RunDayBalance snapshots the previous calendar day's balance
	// contribution per centre into centre_balances. Idempotent.
	RunDayBalance(ctx context.Context, now time.Time) error
	// RunVisitReset zeroes exit-leg fields and closes open visits for the
	// current business day (or the whole table when configured so).
	RunVisitReset(ctx context.Context) error
	ListSummaries(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]DailySummary, error)
	ListBalances(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]CentreBalance, error)
}
