package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLedgerTestService(t *testing.T) (*gorm.DB, ledgerdomain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&centredomain.Centre{},
		&ledgerdomain.Collection{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
	})
	return db, svc, node, fake
}

func seedCentre(t *testing.T, db *gorm.DB, node *snowflake.Node, criteria string, balance int64) centredomain.Centre {
	t.Helper()
	centre := centredomain.Centre{
		ID:          node.Generate(),
		BranchID:    node.Generate(),
		Name:        "Test Centre",
		PayCriteria: criteria,
		Balance:     balance,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&centre).Error)
	return centre
}

func centreBalance(t *testing.T, db *gorm.DB, id snowflake.ID) centredomain.Centre {
	t.Helper()
	var centre centredomain.Centre
	require.NoError(t, db.First(&centre, "id = ?", id).Error)
	return centre
}

func TestPostEntryPayment_AddsCashAndOnlineInBothModes(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)

	plus := seedCentre(t, db, node, centredomain.PayCriteriaPlus, 0)
	minus := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 100)

	require.NoError(t, svc.PostEntryPayment(context.Background(), db, plus.ID, 500, 300))
	require.NoError(t, svc.PostEntryPayment(context.Background(), db, minus.ID, 500, 300))

	assert.Equal(t, int64(800), centreBalance(t, db, plus.ID).Balance)
	assert.Equal(t, int64(900), centreBalance(t, db, minus.ID).Balance)
}

func TestPostExitPayment_PlusNetsCommission(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaPlus, 0)

	require.NoError(t, svc.PostExitPayment(context.Background(), db, centre.ID, 1000, 500, 200, 100))

	// (1000+500) - (200+100)
	assert.Equal(t, int64(1200), centreBalance(t, db, centre.ID).Balance)
}

func TestPostExitPayment_MinusIgnoresCommission(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 50)

	require.NoError(t, svc.PostExitPayment(context.Background(), db, centre.ID, 1000, 500, 200, 100))

	assert.Equal(t, int64(1550), centreBalance(t, db, centre.ID).Balance)
}

func TestPostPayment_UnknownCentre(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)

	err := svc.PostEntryPayment(context.Background(), db, node.Generate(), 100, 0)
	assert.ErrorIs(t, err, ledgerdomain.ErrCentreNotFound)

	err = svc.PostExitPayment(context.Background(), db, node.Generate(), 100, 0, 0, 0)
	assert.ErrorIs(t, err, ledgerdomain.ErrCentreNotFound)
}

func TestPostPayment_RejectsNegativeAmounts(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 0)

	assert.ErrorIs(t, svc.PostEntryPayment(context.Background(), db, centre.ID, -1, 0), ledgerdomain.ErrInvalidAmount)
	assert.ErrorIs(t, svc.PostExitPayment(context.Background(), db, centre.ID, 0, 0, -1, 0), ledgerdomain.ErrInvalidAmount)
	assert.Equal(t, int64(0), centreBalance(t, db, centre.ID).Balance)
}

func TestCollect_BooksPickupAndResetsBalance(t *testing.T) {
	db, svc, node, fake := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 4200)

	from := fake.Now().Add(-48 * time.Hour)
	to := fake.Now()
	collection, err := svc.Collect(context.Background(), ledgerdomain.CollectRequest{
		CentreID:    centre.ID,
		FromDate:    from,
		ToDate:      to,
		Remark:      "weekly pickup",
		CollectedBy: node.Generate(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4200), collection.Amount)
	assert.Equal(t, int64(4200), collection.PreviousBalance)

	after := centreBalance(t, db, centre.ID)
	assert.Equal(t, int64(0), after.Balance)
	assert.Equal(t, int64(4200), after.PreviousBalance)

	rows, err := svc.ListCollections(context.Background(), centre.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, collection.ID, rows[0].ID)
}

func TestCollect_UnknownCentreRollsBack(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)

	_, err := svc.Collect(context.Background(), ledgerdomain.CollectRequest{
		CentreID: node.Generate(),
		FromDate: time.Now().Add(-time.Hour),
		ToDate:   time.Now(),
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrCentreNotFound)

	var count int64
	require.NoError(t, db.Model(&ledgerdomain.Collection{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCollect_RejectsInvertedRange(t *testing.T) {
	db, svc, node, _ := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 100)

	_, err := svc.Collect(context.Background(), ledgerdomain.CollectRequest{
		CentreID: centre.ID,
		FromDate: time.Now(),
		ToDate:   time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidRange)
}

func TestEntryThenCollect_MinusMode(t *testing.T) {
	db, svc, node, fake := newLedgerTestService(t)
	centre := seedCentre(t, db, node, centredomain.PayCriteriaMinus, 0)

	require.NoError(t, svc.PostEntryPayment(context.Background(), db, centre.ID, 100, 0))
	assert.Equal(t, int64(100), centreBalance(t, db, centre.ID).Balance)

	collection, err := svc.Collect(context.Background(), ledgerdomain.CollectRequest{
		CentreID: centre.ID,
		FromDate: fake.Now().Add(-24 * time.Hour),
		ToDate:   fake.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), collection.Amount)

	after := centreBalance(t, db, centre.ID)
	assert.Equal(t, int64(0), after.Balance)
	assert.Equal(t, int64(100), after.PreviousBalance)
}
