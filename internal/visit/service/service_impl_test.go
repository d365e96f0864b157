package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	centrerepo "github.com/techtech-dev-team/stranger-backoffice/internal/centre/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	ledgerservice "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/service"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/repository"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type visitFixture struct {
	db    *gorm.DB
	svc   domain.Service
	node  *snowflake.Node
	clock *clock.FakeClock
	hub   *liveevents.Hub
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&centredomain.Centre{},
		&domain.Visit{},
		&ledgerdomain.Collection{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC))
	hub := liveevents.NewHub()

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
	})

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Repo:       repository.Provide(),
		CentreRepo: centrerepo.Provide(),
		Ledger:     ledgerSvc,
		Hub:        hub,
	})
	return &visitFixture{db: db, svc: svc, node: node, clock: fake, hub: hub}
}

// withLedger rebuilds the service on the same database with a different
// ledger implementation.
func (f *visitFixture) withLedger(ledger ledgerdomain.Service) domain.Service {
	return New(Params{
		DB:         f.db,
		Log:        zap.NewNop(),
		GenID:      f.node,
		Clock:      f.clock,
		Repo:       repository.Provide(),
		CentreRepo: centrerepo.Provide(),
		Ledger:     ledger,
		Hub:        f.hub,
	})
}

func (f *visitFixture) seedCentre(t *testing.T, criteria string) centredomain.Centre {
	t.Helper()
	centre := centredomain.Centre{
		ID:          f.node.Generate(),
		BranchID:    f.node.Generate(),
		Name:        "Fixture Centre",
		PayCriteria: criteria,
		Active:      true,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&centre).Error)
	return centre
}

func (f *visitFixture) balance(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	var centre centredomain.Centre
	require.NoError(t, f.db.First(&centre, "id = ?", id).Error)
	return centre.Balance
}

func TestCheckIn_OpensVisitAndPostsEntryLeg(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	sub, _, err := f.hub.Subscribe(centre.ID.String())
	require.NoError(t, err)
	defer sub.Close()

	visit, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID:     centre.ID.String(),
		CustomerName: "Asha",
		Phone:        "9000000001",
		Service:      "haircut",
		Cash:         300,
		Online:       200,
	})
	require.NoError(t, err)

	assert.True(t, visit.Open())
	assert.Equal(t, int64(300), visit.Cash1)
	assert.Equal(t, int64(500), f.balance(t, centre.ID))

	ev := <-sub.Events()
	assert.Equal(t, liveevents.KindVisitCreated, ev.Kind)
	assert.Equal(t, visit.ID.String(), ev.VisitID)
}

func TestCheckIn_RejectsMissingPhoneAndBadCentre(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	_, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	_, err = f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: "not-a-number",
		Phone:    "9000000001",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCentre)

	_, err = f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: f.node.Generate().String(),
		Phone:    "9000000001",
	})
	assert.ErrorIs(t, err, centredomain.ErrCentreNotFound)
}

func TestCheckIn_RejectsInactiveCentre(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)
	require.NoError(t, f.db.Model(&centredomain.Centre{}).
		Where("id = ?", centre.ID).
		Update("active", false).Error)

	_, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
		Phone:    "9000000001",
	})
	assert.ErrorIs(t, err, centredomain.ErrCentreInactive)
}

func TestCheckOut_ClosesVisitAndNetsCommissionOnPlus(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaPlus)

	visit, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
		Phone:    "9000000001",
		Cash:     100,
		Online:   0,
	})
	require.NoError(t, err)
	f.clock.Advance(45 * time.Minute)

	closed, err := f.svc.CheckOut(context.Background(), visit.ID, domain.CheckOutRequest{
		Cash:             1000,
		Online:           500,
		CashCommission:   200,
		OnlineCommission: 100,
	})
	require.NoError(t, err)

	require.NotNil(t, closed.OutTime)
	assert.Equal(t, f.clock.Now(), closed.OutTime.UTC())
	// 100 entry + (1500 - 300) exit
	assert.Equal(t, int64(1300), f.balance(t, centre.ID))
}

func TestCheckOut_SecondAttemptFails(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	visit, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
		Phone:    "9000000001",
	})
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), visit.ID, domain.CheckOutRequest{Cash: 100})
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), visit.ID, domain.CheckOutRequest{Cash: 100})
	assert.ErrorIs(t, err, domain.ErrVisitAlreadyClosed)
	assert.Equal(t, int64(100), f.balance(t, centre.ID))
}

var errLedgerDown = errors.New("ledger unavailable")

type downLedger struct{}

func (downLedger) PostEntryPayment(context.Context, *gorm.DB, snowflake.ID, int64, int64) error {
	return errLedgerDown
}

func (downLedger) PostExitPayment(context.Context, *gorm.DB, snowflake.ID, int64, int64, int64, int64) error {
	return errLedgerDown
}

func (downLedger) Collect(context.Context, ledgerdomain.CollectRequest) (ledgerdomain.Collection, error) {
	return ledgerdomain.Collection{}, errLedgerDown
}

func (downLedger) ListCollections(context.Context, snowflake.ID) ([]ledgerdomain.Collection, error) {
	return nil, errLedgerDown
}

func TestCheckIn_RollsBackVisitWhenPostingFails(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)
	svc := f.withLedger(downLedger{})

	_, err := svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
		Phone:    "9000000001",
		Cash:     100,
	})
	require.ErrorIs(t, err, errLedgerDown)

	var count int64
	require.NoError(t, f.db.Model(&domain.Visit{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(0), f.balance(t, centre.ID))
}

func TestCheckOut_RollsBackExitLegWhenPostingFails(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)

	visit, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: centre.ID.String(),
		Phone:    "9000000001",
		Cash:     100,
	})
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	_, err = f.withLedger(downLedger{}).CheckOut(context.Background(), visit.ID, domain.CheckOutRequest{
		Cash: 500,
	})
	require.ErrorIs(t, err, errLedgerDown)

	stored, err := f.svc.GetVisit(context.Background(), visit.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
	assert.Zero(t, stored.Cash2)
	assert.Equal(t, int64(100), f.balance(t, centre.ID))
}

func TestListVisits_FiltersAndPaginates(t *testing.T) {
	f := newVisitFixture(t)
	centre := f.seedCentre(t, centredomain.PayCriteriaMinus)
	other := f.seedCentre(t, centredomain.PayCriteriaMinus)

	for i := 0; i < 3; i++ {
		_, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
			CentreID: centre.ID.String(),
			Phone:    "9000000001",
		})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.CheckIn(context.Background(), domain.CheckInRequest{
		CentreID: other.ID.String(),
		Phone:    "9000000002",
	})
	require.NoError(t, err)

	visits, info, err := f.svc.ListVisits(context.Background(), domain.ListVisitFilter{
		CentreID: centre.ID,
	}, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, visits, 2)
	assert.True(t, info.HasMore)
	assert.NotEmpty(t, info.NextPageToken)

	open := true
	visits, _, err = f.svc.ListVisits(context.Background(), domain.ListVisitFilter{
		Phone: "9000000002",
		Open:  &open,
	}, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, other.ID, visits[0].CentreID)
}
