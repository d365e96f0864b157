package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/authctx"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	ledgerdomain "github.com/techtech-dev-team/stranger-backoffice/internal/ledger/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
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
	Ledger     ledgerdomain.Service
	Hub        *liveevents.Hub `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	centreRepo centredomain.Repository
	ledger     ledgerdomain.Service
	hub        *liveevents.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("visit.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		centreRepo: p.CentreRepo,
		ledger:     p.Ledger,
		hub:        p.Hub,
	}
}

func (s *Service) CheckIn(ctx context.Context, req domain.CheckInRequest) (domain.Visit, error) {
	centreID, err := parseID(req.CentreID)
	if err != nil || centreID == 0 {
		return domain.Visit{}, domain.ErrInvalidCentre
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Visit{}, domain.ErrInvalidPhone
	}
	if req.Cash < 0 || req.Online < 0 {
		return domain.Visit{}, domain.ErrInvalidAmount
	}

	centre, err := s.centreRepo.FindByID(ctx, s.db, centreID)
	if err != nil {
		return domain.Visit{}, err
	}
	if centre == nil {
		return domain.Visit{}, centredomain.ErrCentreNotFound
	}
	if !centre.Active {
		return domain.Visit{}, centredomain.ErrCentreInactive
	}

	now := s.clock.Now().UTC()
	visit := domain.Visit{
		ID:           s.genID.Generate(),
		CentreID:     centreID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        phone,
		Service:      strings.TrimSpace(req.Service),
		InTime:       now,
		Cash1:        req.Cash,
		Online1:      req.Online,
		TID1:         strings.TrimSpace(req.TID),
		Remark1:      strings.TrimSpace(req.Remark),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if staffID, ok := authctx.UserIDFromContext(ctx); ok {
		visit.StaffID = staffID
	}

	// Visit row and balance posting commit together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &visit); err != nil {
			return err
		}
		return s.ledger.PostEntryPayment(ctx, tx, centreID, req.Cash, req.Online)
	})
	if err != nil {
		s.log.Error("check-in aborted",
			zap.String("visit_id", visit.ID.String()),
			zap.Error(err),
		)
		return domain.Visit{}, err
	}

	s.publish(liveevents.LiveEvent{
		Kind:       liveevents.KindVisitCreated,
		CentreID:   centreID.String(),
		VisitID:    visit.ID.String(),
		Customer:   visit.CustomerName,
		Amount:     req.Cash + req.Online,
		OccurredAt: now.Format("2006-01-02T15:04:05Z07:00"),
	})

	s.log.Info("visit opened",
		zap.String("visit_id", visit.ID.String()),
		zap.String("centre_id", centreID.String()),
	)
	return visit, nil
}

func (s *Service) CheckOut(ctx context.Context, id snowflake.ID, req domain.CheckOutRequest) (domain.Visit, error) {
	if req.Cash < 0 || req.Online < 0 || req.CashCommission < 0 || req.OnlineCommission < 0 {
		return domain.Visit{}, domain.ErrInvalidAmount
	}

	visit, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Visit{}, err
	}
	if visit == nil {
		return domain.Visit{}, domain.ErrVisitNotFound
	}
	if !visit.Open() {
		return domain.Visit{}, domain.ErrVisitAlreadyClosed
	}

	now := s.clock.Now().UTC()
	visit.OutTime = &now
	visit.Cash2 = req.Cash
	visit.Online2 = req.Online
	visit.CashCommission = req.CashCommission
	visit.OnlineCommission = req.OnlineCommission
	visit.TID2 = strings.TrimSpace(req.TID)
	visit.Remark2 = strings.TrimSpace(req.Remark)
	visit.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateExitLeg(ctx, tx, visit); err != nil {
			return err
		}
		return s.ledger.PostExitPayment(ctx, tx, visit.CentreID, req.Cash, req.Online, req.CashCommission, req.OnlineCommission)
	})
	if err != nil {
		s.log.Error("check-out aborted",
			zap.String("visit_id", visit.ID.String()),
			zap.Error(err),
		)
		return domain.Visit{}, err
	}

	s.publish(liveevents.LiveEvent{
		Kind:       liveevents.KindVisitClosed,
		CentreID:   visit.CentreID.String(),
		VisitID:    visit.ID.String(),
		Customer:   visit.CustomerName,
		Amount:     req.Cash + req.Online,
		OccurredAt: now.Format("2006-01-02T15:04:05Z07:00"),
	})

	return *visit, nil
}

func (s *Service) GetVisit(ctx context.Context, id snowflake.ID) (domain.Visit, error) {
	visit, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Visit{}, err
	}
	if visit == nil {
		return domain.Visit{}, domain.ErrVisitNotFound
	}
	return *visit, nil
}

func (s *Service) ListVisits(ctx context.Context, filter domain.ListVisitFilter, page pagination.Pagination) ([]*domain.Visit, pagination.PageInfo, error) {
	visits, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	visits, info := pagination.BuildPageInfo(visits, page.PageSize, func(v *domain.Visit) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        v.ID.String(),
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05.999999999Z07:00"),
		})
		if err != nil {
			return ""
		}
		return token
	})
	return visits, info, nil
}

func (s *Service) publish(event liveevents.LiveEvent) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(event)
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
