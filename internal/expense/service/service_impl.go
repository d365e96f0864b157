package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/authctx"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	CentreRepo centredomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	centreRepo centredomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("expense.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		centreRepo: p.CentreRepo,
	}
}

func (s *Service) CreateExpense(ctx context.Context, req domain.CreateExpenseRequest) (domain.Expense, error) {
	if req.Amount <= 0 {
		return domain.Expense{}, domain.ErrInvalidAmount
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.Expense{}, domain.ErrInvalidReason
	}
	if len(req.CentreIDs) == 0 {
		return domain.Expense{}, domain.ErrNoCentres
	}

	centreIDs := make([]snowflake.ID, 0, len(req.CentreIDs))
	seen := make(map[snowflake.ID]struct{}, len(req.CentreIDs))
	for _, raw := range req.CentreIDs {
		id, err := parseID(raw)
		if err != nil || id == 0 {
			return domain.Expense{}, domain.ErrInvalidCentre
		}
		if _, dup := seen[id]; dup {
			continue
		}
		centre, err := s.centreRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.Expense{}, err
		}
		if centre == nil {
			return domain.Expense{}, centredomain.ErrCentreNotFound
		}
		seen[id] = struct{}{}
		centreIDs = append(centreIDs, id)
	}

	now := s.clock.Now().UTC()
	expense := domain.Expense{
		ID:         s.genID.Generate(),
		Amount:     req.Amount,
		Reason:     reason,
		IncurredAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
		CentreIDs:  centreIDs,
	}
	if userID, ok := authctx.UserIDFromContext(ctx); ok {
		expense.CreatedBy = userID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &expense)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.log.Info("expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.Int64("amount", expense.Amount),
		zap.Int("centres", len(centreIDs)),
	)
	return expense, nil
}

func (s *Service) GetExpense(ctx context.Context, id snowflake.ID) (domain.Expense, error) {
	expense, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Expense{}, err
	}
	if expense == nil {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}
	return *expense, nil
}

func (s *Service) ListExpenses(ctx context.Context, filter domain.ListExpenseFilter) ([]domain.Expense, error) {
	return s.repo.List(ctx, s.db, filter)
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
