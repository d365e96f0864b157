package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
)

// SalesRow is one centre's aggregate over the requested date range.
type SalesRow struct {
	CentreID         snowflake.ID `json:"centre_id"`
	CentreName       string       `json:"centre_name"`
	CashTotal        int64        `json:"cash_total"`
	OnlineTotal      int64        `json:"online_total"`
	CashCommission   int64        `json:"cash_commission"`
	OnlineCommission int64        `json:"online_commission"`
	ExpenseTotal     int64        `json:"expense_total"`
	VisitCount       int64        `json:"visit_count"`
}

type SalesReport struct {
	FromDate string     `json:"from_date"`
	ToDate   string     `json:"to_date"`
	Rows     []SalesRow `json:"rows"`
}

type SalesFilter struct {
	FromDate string
	ToDate   string
	RegionID snowflake.ID
	BranchID snowflake.ID
	CentreID snowflake.ID
}

type Service interface {
	// SalesReport sums daily summaries per centre over a date range.
	SalesReport(ctx context.Context, filter SalesFilter) (SalesReport, error)
	// FindByTID returns the visits carrying the online transaction id on
	// either payment leg.
	FindByTID(ctx context.Context, tid string) ([]visitdomain.Visit, error)
}

var (
	ErrInvalidRange = errors.New("invalid_range")
	ErrInvalidTID   = errors.New("invalid_tid")
)
