package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"github.com/techtech-dev-team/stranger-backoffice/internal/summary/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// resetRemark marks exit legs closed by the nightly sweep rather than a
// front-desk check-out.
const resetRemark = "closed by day-end reset"

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	loc          *time.Location
	dayStartHour int
	resetAll     bool
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("summary.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		loc:          p.Config.Location(),
		dayStartHour: p.Config.DayStartHour,
		resetAll:     p.Config.SummaryResetAllVisits,
	}
}

type centreAggregate struct {
	CentreID         snowflake.ID
	CashTotal        int64
	OnlineTotal      int64
	CashCommission   int64
	OnlineCommission int64
	VisitCount       int64
	ExpenseTotal     int64
}

func (s *Service) RunSummary(ctx context.Context, businessDate time.Time) error {
	start, end := s.businessWindow(businessDate)
	dateKey := start.Format(domain.DateFormat)

	aggregates, err := s.aggregateWindow(ctx, start, end)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	var errs []error
	for _, agg := range aggregates {
		err := s.db.WithContext(ctx).Exec(
			`INSERT INTO daily_summaries (id, centre_id, date, cash_total, online_total, cash_commission, online_commission, expense_total, visit_count, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (centre_id, date) DO UPDATE SET
			   cash_total = excluded.cash_total,
			   online_total = excluded.online_total,
			   cash_commission = excluded.cash_commission,
			   online_commission = excluded.online_commission,
			   expense_total = excluded.expense_total,
			   visit_count = excluded.visit_count,
			   updated_at = excluded.updated_at`,
			s.genID.Generate(),
			agg.CentreID,
			dateKey,
			agg.CashTotal,
			agg.OnlineTotal,
			agg.CashCommission,
			agg.OnlineCommission,
			agg.ExpenseTotal,
			agg.VisitCount,
			now,
			now,
		).Error
		if err != nil {
			s.log.Error("daily summary upsert failed",
				zap.String("centre_id", agg.CentreID.String()),
				zap.String("date", dateKey),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("centre %s: %w", agg.CentreID, err))
		}
	}

	s.log.Info("daily summary run finished",
		zap.String("date", dateKey),
		zap.Int("centres", len(aggregates)),
		zap.Int("failures", len(errs)),
	)
	return errors.Join(errs...)
}

// aggregateWindow merges per-centre visit sums and expense fan-outs for
// [start, end). A centre appearing in only one source still gets a row.
func (s *Service) aggregateWindow(ctx context.Context, start, end time.Time) ([]*centreAggregate, error) {
	var visitRows []struct {
		CentreID         snowflake.ID
		CashTotal        int64
		OnlineTotal      int64
		CashCommission   int64
		OnlineCommission int64
		VisitCount       int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT centre_id,
		   COALESCE(SUM(cash1 + cash2), 0) AS cash_total,
		   COALESCE(SUM(online1 + online2), 0) AS online_total,
		   COALESCE(SUM(cash_commission), 0) AS cash_commission,
		   COALESCE(SUM(online_commission), 0) AS online_commission,
		   COUNT(*) AS visit_count
		 FROM visits
		 WHERE in_time >= ? AND in_time < ?
		 GROUP BY centre_id`,
		start, end,
	).Scan(&visitRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate visits: %w", err)
	}

	var expenseRows []struct {
		CentreID     snowflake.ID
		ExpenseTotal int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT ec.centre_id, COALESCE(SUM(e.amount), 0) AS expense_total
		 FROM expenses e
		 JOIN expense_centres ec ON ec.expense_id = e.id
		 WHERE e.incurred_at >= ? AND e.incurred_at < ?
		 GROUP BY ec.centre_id`,
		start, end,
	).Scan(&expenseRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}

	byCentre := make(map[snowflake.ID]*centreAggregate)
	for _, row := range visitRows {
		byCentre[row.CentreID] = &centreAggregate{
			CentreID:         row.CentreID,
			CashTotal:        row.CashTotal,
			OnlineTotal:      row.OnlineTotal,
			CashCommission:   row.CashCommission,
			OnlineCommission: row.OnlineCommission,
			VisitCount:       row.VisitCount,
		}
	}
	for _, row := range expenseRows {
		agg := byCentre[row.CentreID]
		if agg == nil {
			agg = &centreAggregate{CentreID: row.CentreID}
			byCentre[row.CentreID] = agg
		}
		agg.ExpenseTotal = row.ExpenseTotal
	}

	aggregates := make([]*centreAggregate, 0, len(byCentre))
	for _, agg := range byCentre {
		aggregates = append(aggregates, agg)
	}
	return aggregates, nil
}

func (s *Service) RunDayBalance(ctx context.Context, now time.Time) error {
	local := now.In(s.loc)
	prevDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -1)
	start := prevDay
	end := prevDay.AddDate(0, 0, 1)
	dateKey := prevDay.Format(domain.DateFormat)

	var rows []struct {
		CentreID       snowflake.ID
		PayCriteria    string
		CashTotal      int64
		CashCommission int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT c.id AS centre_id, c.pay_criteria,
		   COALESCE(SUM(v.cash1 + v.cash2), 0) AS cash_total,
		   COALESCE(SUM(v.cash_commission), 0) AS cash_commission
		 FROM centres c
		 JOIN visits v ON v.centre_id = c.id
		 WHERE v.in_time >= ? AND v.in_time < ?
		 GROUP BY c.id, c.pay_criteria`,
		start, end,
	).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("aggregate day balances: %w", err)
	}

	stamp := s.clock.Now().UTC()
	var errs []error
	for _, row := range rows {
		amount := row.CashTotal
		if row.PayCriteria == centredomain.PayCriteriaPlus {
			amount += row.CashCommission
		}
		err := s.db.WithContext(ctx).Exec(
			`INSERT INTO centre_balances (id, centre_id, date, amount, pay_criteria, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (centre_id, date) DO UPDATE SET
			   amount = excluded.amount,
			   pay_criteria = excluded.pay_criteria,
			   updated_at = excluded.updated_at`,
			s.genID.Generate(),
			row.CentreID,
			dateKey,
			amount,
			row.PayCriteria,
			stamp,
			stamp,
		).Error
		if err != nil {
			s.log.Error("day balance upsert failed",
				zap.String("centre_id", row.CentreID.String()),
				zap.String("date", dateKey),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("centre %s: %w", row.CentreID, err))
		}
	}

	s.log.Info("day balance run finished",
		zap.String("date", dateKey),
		zap.Int("centres", len(rows)),
		zap.Int("failures", len(errs)),
	)
	return errors.Join(errs...)
}

func (s *Service) RunVisitReset(ctx context.Context) error {
	now := s.clock.Now().UTC()

	stmt := s.db.WithContext(ctx).Table("visits")
	if !s.resetAll {
		// Close out the business day that ended at the last day-start
		// boundary. The day in progress is left alone, and the closed
		// window has already been summarised by the earlier daily jobs.
		start, _ := s.businessWindow(s.clock.Now())
		stmt = stmt.Where("in_time >= ? AND in_time < ?", start.AddDate(0, 0, -1), start)
	} else {
		// The full-table sweep intentionally has no WHERE clause, so the
		// session must opt out of GORM's global-update guard.
		stmt = stmt.Session(&gorm.Session{AllowGlobalUpdate: true})
	}

	result := stmt.Updates(map[string]interface{}{
		"cash2":             0,
		"online2":           0,
		"cash_commission":   0,
		"online_commission": 0,
		"remark2":           resetRemark,
		"out_time":          gorm.Expr("COALESCE(out_time, ?)", now),
		"updated_at":        now,
	})
	if result.Error != nil {
		return fmt.Errorf("visit reset: %w", result.Error)
	}

	s.log.Info("visit reset finished",
		zap.Int64("visits", result.RowsAffected),
		zap.Bool("full_table", s.resetAll),
	)
	return nil
}

// businessWindow returns the operating-day span owning t: day-start hour
// local time to +24h. A timestamp before the day-start hour belongs to
// the previous day's window.
func (s *Service) businessWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), s.dayStartHour, 0, 0, 0, s.loc)
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start, start.AddDate(0, 0, 1)
}

func (s *Service) ListSummaries(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]domain.DailySummary, error) {
	var summaries []domain.DailySummary
	stmt := s.db.WithContext(ctx).Model(&domain.DailySummary{})
	if centreID != 0 {
		stmt = stmt.Where("centre_id = ?", centreID)
	}
	if fromDate != "" {
		stmt = stmt.Where("date >= ?", fromDate)
	}
	if toDate != "" {
		stmt = stmt.Where("date <= ?", toDate)
	}
	err := stmt.Order("date desc, centre_id asc").Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Service) ListBalances(ctx context.Context, centreID snowflake.ID, fromDate, toDate string) ([]domain.CentreBalance, error) {
	var balances []domain.CentreBalance
	stmt := s.db.WithContext(ctx).Model(&domain.CentreBalance{})
	if centreID != 0 {
		stmt = stmt.Where("centre_id = ?", centreID)
	}
	if fromDate != "" {
		stmt = stmt.Where("date >= ?", fromDate)
	}
	if toDate != "" {
		stmt = stmt.Where("date <= ?", toDate)
	}
	err := stmt.Order("date desc, centre_id asc").Find(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}
