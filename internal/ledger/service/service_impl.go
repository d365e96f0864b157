package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) PostEntryPayment(ctx context.Context, db *gorm.DB, centreID snowflake.ID, cash, online int64) error {
	if cash < 0 || online < 0 {
		return ledgerdomain.ErrInvalidAmount
	}
	return s.credit(ctx, db, centreID, cash+online)
}

func (s *Service) PostExitPayment(ctx context.Context, db *gorm.DB, centreID snowflake.ID, cash, online, cashComm, onlineComm int64) error {
	if cash < 0 || online < 0 || cashComm < 0 || onlineComm < 0 {
		return ledgerdomain.ErrInvalidAmount
	}

	var criteria string
	err := db.WithContext(ctx).Raw(
		`SELECT pay_criteria FROM centres WHERE id = ?`, centreID,
	).Scan(&criteria).Error
	if err != nil {
		return err
	}
	if criteria == "" {
		return ledgerdomain.ErrCentreNotFound
	}

	delta := cash + online
	if criteria == centredomain.PayCriteriaPlus {
		delta -= cashComm + onlineComm
	}
	return s.credit(ctx, db, centreID, delta)
}

// credit applies a balance delta in one statement so concurrent postings
// never lose an increment.
func (s *Service) credit(ctx context.Context, db *gorm.DB, centreID snowflake.ID, delta int64) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE centres SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		delta,
		s.clock.Now().UTC(),
		centreID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledgerdomain.ErrCentreNotFound
	}
	return nil
}

func (s *Service) Collect(ctx context.Context, req ledgerdomain.CollectRequest) (ledgerdomain.Collection, error) {
	if req.CentreID == 0 {
		return ledgerdomain.Collection{}, ledgerdomain.ErrCentreNotFound
	}
	if req.ToDate.Before(req.FromDate) {
		return ledgerdomain.Collection{}, ledgerdomain.ErrInvalidRange
	}

	var collection ledgerdomain.Collection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance struct {
			ID      snowflake.ID
			Balance int64
		}
		err := tx.WithContext(ctx).Raw(
			`SELECT id, balance FROM centres WHERE id = ?`, req.CentreID,
		).Scan(&balance).Error
		if err != nil {
			return err
		}
		if balance.ID == 0 {
			return ledgerdomain.ErrCentreNotFound
		}

		collection = ledgerdomain.Collection{
			ID:              s.genID.Generate(),
			CentreID:        req.CentreID,
			Amount:          balance.Balance,
			FromDate:        req.FromDate,
			ToDate:          req.ToDate,
			Remark:          req.Remark,
			CollectedBy:     req.CollectedBy,
			PreviousBalance: balance.Balance,
			CreatedAt:       s.clock.Now().UTC(),
		}
		err = tx.WithContext(ctx).Exec(
			`INSERT INTO cash_collections (id, centre_id, amount, from_date, to_date, remark, collected_by, previous_balance, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			collection.ID,
			collection.CentreID,
			collection.Amount,
			collection.FromDate,
			collection.ToDate,
			collection.Remark,
			collection.CollectedBy,
			collection.PreviousBalance,
			collection.CreatedAt,
		).Error
		if err != nil {
			return err
		}

		return tx.WithContext(ctx).Exec(
			`UPDATE centres SET previous_balance = balance, balance = 0, updated_at = ? WHERE id = ?`,
			collection.CreatedAt,
			req.CentreID,
		).Error
	})
	if err != nil {
		return ledgerdomain.Collection{}, err
	}

	s.log.Info("cash collected",
		zap.String("centre_id", req.CentreID.String()),
		zap.Int64("amount", collection.Amount),
	)
	return collection, nil
}

func (s *Service) ListCollections(ctx context.Context, centreID snowflake.ID) ([]ledgerdomain.Collection, error) {
	var collections []ledgerdomain.Collection
	stmt := s.db.WithContext(ctx).Model(&ledgerdomain.Collection{})
	if centreID != 0 {
		stmt = stmt.Where("centre_id = ?", centreID)
	}
	err := stmt.Order("created_at desc, id desc").Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}
