package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	expensedomain "github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/summary/domain"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type summaryFixture struct {
	db    *gorm.DB
	svc   domain.Service
	node  *snowflake.Node
	clock *clock.FakeClock
}

// Fixtures run in UTC so window arithmetic in assertions stays readable.
func newSummaryFixture(t *testing.T, resetAll bool) *summaryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&centredomain.Centre{},
		&visitdomain.Visit{},
		&expensedomain.Expense{},
		&expensedomain.ExpenseCentre{},
		&domain.DailySummary{},
		&domain.CentreBalance{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 7, 15, 0, 0, time.UTC))

	svc := New(Params{
		Config: config.Config{
			Timezone:              "UTC",
			DayStartHour:          7,
			SummaryResetAllVisits: resetAll,
		},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
	})
	return &summaryFixture{db: db, svc: svc, node: node, clock: fake}
}

func (f *summaryFixture) seedCentre(t *testing.T, criteria string) centredomain.Centre {
	t.Helper()
	centre := centredomain.Centre{
		ID:          f.node.Generate(),
		BranchID:    f.node.Generate(),
		Name:        "Summary Centre",
		PayCriteria: criteria,
		Active:      true,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&centre).Error)
	return centre
}

func (f *summaryFixture) seedVisit(t *testing.T, centreID snowflake.ID, inTime time.Time, cash1, cash2, online1, online2, cashComm, onlineComm int64) visitdomain.Visit {
	t.Helper()
	visit := visitdomain.Visit{
		ID:               f.node.Generate(),
		CentreID:         centreID,
		Phone:            "9000000001",
		InTime:           inTime,
		Cash1:            cash1,
		Cash2:            cash2,
		Online1:          online1,
		Online2:          online2,
		CashCommission:   cashComm,
		OnlineCommission: onlineComm,
		CreatedAt:        inTime,
		UpdatedAt:        inTime,
	}
	require.NoError(t, f.db.Create(&visit).Error)
	return visit
}

func (f *summaryFixture) seedExpense(t *testing.T, amount int64, incurredAt time.Time, centreIDs ...snowflake.ID) {
	t.Helper()
	expense := expensedomain.Expense{
		ID:         f.node.Generate(),
		Amount:     amount,
		Reason:     "supplies",
		IncurredAt: incurredAt,
		CreatedAt:  incurredAt,
		UpdatedAt:  incurredAt,
	}
	require.NoError(t, f.db.Create(&expense).Error)
	for _, centreID := range centreIDs {
		require.NoError(t, f.db.Create(&expensedomain.ExpenseCentre{
			ExpenseID: expense.ID,
			CentreID:  centreID,
		}).Error)
	}
}

func (f *summaryFixture) summaryRow(t *testing.T, centreID snowflake.ID, date string) domain.DailySummary {
	t.Helper()
	var row domain.DailySummary
	require.NoError(t, f.db.First(&row, "centre_id = ? AND date = ?", centreID, date).Error)
	return row
}

func TestRunSummary_AggregatesBusinessWindow(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	businessDate := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	// inside the window
	f.seedVisit(t, centre.ID, businessDate.Add(2*time.Hour), 100, 200, 50, 25, 10, 5)
	f.seedVisit(t, centre.ID, businessDate.Add(20*time.Hour), 300, 0, 0, 0, 0, 0)
	// 06:30 next morning still belongs to the 2024-03-10 window
	f.seedVisit(t, centre.ID, businessDate.Add(23*time.Hour+30*time.Minute), 40, 0, 0, 0, 0, 0)
	// before the 07:00 day start: previous business day
	f.seedVisit(t, centre.ID, businessDate.Add(-30*time.Minute), 9999, 0, 0, 0, 0, 0)

	f.seedExpense(t, 150, businessDate.Add(5*time.Hour), centre.ID)

	require.NoError(t, f.svc.RunSummary(context.Background(), businessDate))

	row := f.summaryRow(t, centre.ID, "2024-03-10")
	assert.Equal(t, int64(640), row.CashTotal)
	assert.Equal(t, int64(75), row.OnlineTotal)
	assert.Equal(t, int64(10), row.CashCommission)
	assert.Equal(t, int64(5), row.OnlineCommission)
	assert.Equal(t, int64(150), row.ExpenseTotal)
	assert.Equal(t, int64(3), row.VisitCount)
}

func TestRunSummary_ExpenseOnlyCentreGetsARow(t *testing.T) {
	f := newSummaryFixture(t, false)
	visited := f.seedCentre(t, centredomain.PayCriteriaMinus)
	expenseOnly := f.seedCentre(t, centredomain.PayCriteriaMinus)

	businessDate := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	f.seedVisit(t, visited.ID, businessDate.Add(time.Hour), 100, 0, 0, 0, 0, 0)
	// one expense fanned out to both centres charges each the full amount
	f.seedExpense(t, 500, businessDate.Add(time.Hour), visited.ID, expenseOnly.ID)

	require.NoError(t, f.svc.RunSummary(context.Background(), businessDate))

	row := f.summaryRow(t, expenseOnly.ID, "2024-03-10")
	assert.Equal(t, int64(500), row.ExpenseTotal)
	assert.Zero(t, row.CashTotal)
	assert.Zero(t, row.VisitCount)

	assert.Equal(t, int64(500), f.summaryRow(t, visited.ID, "2024-03-10").ExpenseTotal)
}

func TestRunSummary_Idempotent(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	businessDate := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	f.seedVisit(t, centre.ID, businessDate.Add(time.Hour), 100, 50, 0, 0, 0, 0)

	require.NoError(t, f.svc.RunSummary(context.Background(), businessDate))
	require.NoError(t, f.svc.RunSummary(context.Background(), businessDate))

	var count int64
	require.NoError(t, f.db.Model(&domain.DailySummary{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(150), f.summaryRow(t, centre.ID, "2024-03-10").CashTotal)
}

// A centre whose upsert fails is reported but must not stop the other
// centres from being summarised.
func TestRunSummary_CentreFailureDoesNotAbortBatch(t *testing.T) {
	f := newSummaryFixture(t, false)
	poisoned := f.seedCentre(t, centredomain.PayCriteriaMinus)
	healthy := f.seedCentre(t, centredomain.PayCriteriaMinus)
	other := f.seedCentre(t, centredomain.PayCriteriaMinus)

	businessDate := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	f.seedVisit(t, poisoned.ID, businessDate.Add(time.Hour), 100, 0, 0, 0, 0, 0)
	f.seedVisit(t, healthy.ID, businessDate.Add(time.Hour), 250, 0, 0, 0, 0, 0)
	f.seedVisit(t, other.ID, businessDate.Add(2*time.Hour), 400, 0, 0, 0, 0, 0)

	// reject the upsert for one centre only
	require.NoError(t, f.db.Exec(fmt.Sprintf(
		`CREATE TRIGGER reject_one_summary BEFORE INSERT ON daily_summaries
		 WHEN NEW.centre_id = %s
		 BEGIN SELECT RAISE(ABORT, 'summary rejected'); END`, poisoned.ID,
	)).Error)

	err := f.svc.RunSummary(context.Background(), businessDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), poisoned.ID.String())

	assert.Equal(t, int64(250), f.summaryRow(t, healthy.ID, "2024-03-10").CashTotal)
	assert.Equal(t, int64(400), f.summaryRow(t, other.ID, "2024-03-10").CashTotal)

	var count int64
	require.NoError(t, f.db.Model(&domain.DailySummary{}).
		Where("centre_id = ?", poisoned.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunDayBalance_PayCriteriaBranches(t *testing.T) {
	f := newSummaryFixture(t, false)
	plus := f.seedCentre(t, centredomain.PayCriteriaPlus)
	minus := f.seedCentre(t, centredomain.PayCriteriaMinus)

	// previous calendar day relative to the fixture clock (2024-03-11)
	prevDay := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.seedVisit(t, plus.ID, prevDay, 1000, 500, 0, 0, 200, 0)
	f.seedVisit(t, minus.ID, prevDay, 1000, 500, 0, 0, 200, 0)

	require.NoError(t, f.svc.RunDayBalance(context.Background(), f.clock.Now()))

	var rows []domain.CentreBalance
	require.NoError(t, f.db.Order("centre_id").Find(&rows).Error)
	require.Len(t, rows, 2)

	byID := map[snowflake.ID]domain.CentreBalance{}
	for _, row := range rows {
		byID[row.CentreID] = row
	}
	assert.Equal(t, int64(1700), byID[plus.ID].Amount)
	assert.Equal(t, centredomain.PayCriteriaPlus, byID[plus.ID].PayCriteria)
	assert.Equal(t, int64(1500), byID[minus.ID].Amount)
	assert.Equal(t, "2024-03-10", byID[plus.ID].Date)
}

func TestRunDayBalance_Idempotent(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)
	f.seedVisit(t, centre.ID, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), 100, 0, 0, 0, 0, 0)

	require.NoError(t, f.svc.RunDayBalance(context.Background(), f.clock.Now()))
	require.NoError(t, f.svc.RunDayBalance(context.Background(), f.clock.Now()))

	var count int64
	require.NoError(t, f.db.Model(&domain.CentreBalance{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunVisitReset_TargetsClosedBusinessDay(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	// clock is 2024-03-11 07:45, so the closed window is
	// [2024-03-10 07:00, 2024-03-11 07:00)
	f.clock.Set(time.Date(2024, 3, 11, 7, 45, 0, 0, time.UTC))
	closed := f.seedVisit(t, centre.ID, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), 100, 200, 0, 0, 30, 0)
	current := f.seedVisit(t, centre.ID, time.Date(2024, 3, 11, 7, 5, 0, 0, time.UTC), 100, 200, 0, 0, 30, 0)
	older := f.seedVisit(t, centre.ID, time.Date(2024, 3, 9, 6, 0, 0, 0, time.UTC), 100, 200, 0, 0, 30, 0)

	require.NoError(t, f.svc.RunVisitReset(context.Background()))

	var reset visitdomain.Visit
	require.NoError(t, f.db.First(&reset, "id = ?", closed.ID).Error)
	assert.Zero(t, reset.Cash2)
	assert.Zero(t, reset.CashCommission)
	assert.Equal(t, resetRemark, reset.Remark2)
	require.NotNil(t, reset.OutTime)

	for _, id := range []snowflake.ID{current.ID, older.ID} {
		var untouched visitdomain.Visit
		require.NoError(t, f.db.First(&untouched, "id = ?", id).Error)
		assert.Equal(t, int64(200), untouched.Cash2)
	}
}

// Default schedule: summary 07:15, day balance 07:30, reset 07:45. The
// exit legs booked during the closed window must land in the aggregates
// before the reset blanks them.
func TestDailyJobs_DefaultOrderKeepsExitLeg(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	visit := f.seedVisit(t, centre.ID, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), 100, 500, 0, 0, 0, 0)

	f.clock.Set(time.Date(2024, 3, 11, 7, 15, 0, 0, time.UTC))
	require.NoError(t, f.svc.RunSummary(context.Background(), f.clock.Now().AddDate(0, 0, -1)))
	f.clock.Set(time.Date(2024, 3, 11, 7, 30, 0, 0, time.UTC))
	require.NoError(t, f.svc.RunDayBalance(context.Background(), f.clock.Now()))
	f.clock.Set(time.Date(2024, 3, 11, 7, 45, 0, 0, time.UTC))
	require.NoError(t, f.svc.RunVisitReset(context.Background()))

	assert.Equal(t, int64(600), f.summaryRow(t, centre.ID, "2024-03-10").CashTotal)

	var balance domain.CentreBalance
	require.NoError(t, f.db.First(&balance, "centre_id = ? AND date = ?", centre.ID, "2024-03-10").Error)
	assert.Equal(t, int64(600), balance.Amount)

	var reset visitdomain.Visit
	require.NoError(t, f.db.First(&reset, "id = ?", visit.ID).Error)
	assert.Zero(t, reset.Cash2)
	assert.Equal(t, resetRemark, reset.Remark2)
}

func TestRunVisitReset_FullTableWhenConfigured(t *testing.T) {
	f := newSummaryFixture(t, true)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	old := f.seedVisit(t, centre.ID, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 100, 200, 0, 0, 30, 0)

	require.NoError(t, f.svc.RunVisitReset(context.Background()))

	var reset visitdomain.Visit
	require.NoError(t, f.db.First(&reset, "id = ?", old.ID).Error)
	assert.Zero(t, reset.Cash2)
}

func TestRunVisitReset_KeepsExistingOutTime(t *testing.T) {
	f := newSummaryFixture(t, false)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	// clock is 2024-03-11 07:15, the visit sits in the closed window
	out := time.Date(2024, 3, 10, 15, 10, 0, 0, time.UTC)
	visit := f.seedVisit(t, centre.ID, time.Date(2024, 3, 10, 15, 5, 0, 0, time.UTC), 0, 0, 0, 0, 0, 0)
	require.NoError(t, f.db.Model(&visitdomain.Visit{}).
		Where("id = ?", visit.ID).
		Update("out_time", out).Error)

	require.NoError(t, f.svc.RunVisitReset(context.Background()))

	var reset visitdomain.Visit
	require.NoError(t, f.db.First(&reset, "id = ?", visit.ID).Error)
	require.NotNil(t, reset.OutTime)
	assert.Equal(t, out, reset.OutTime.UTC())
}
