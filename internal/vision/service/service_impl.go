package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	centredomain "github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	"github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
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
	Hub        *liveevents.Hub `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	centreRepo centredomain.Repository
	hub        *liveevents.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("vision.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		centreRepo: p.CentreRepo,
		hub:        p.Hub,
	}
}

func (s *Service) CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (domain.Entry, error) {
	centreID, err := parseID(req.CentreID)
	if err != nil || centreID == 0 {
		return domain.Entry{}, domain.ErrInvalidCentre
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Entry{}, domain.ErrInvalidCode
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusIn
	}
	if !domain.ValidStatus(status) {
		return domain.Entry{}, domain.ErrInvalidStatus
	}

	centre, err := s.centreRepo.FindByID(ctx, s.db, centreID)
	if err != nil {
		return domain.Entry{}, err
	}
	if centre == nil {
		return domain.Entry{}, centredomain.ErrCentreNotFound
	}

	now := s.clock.Now().UTC()
	timeOfDay := strings.TrimSpace(req.TimeOfDay)
	if timeOfDay == "" {
		timeOfDay = now.Format("15:04")
	}
	entry := domain.Entry{
		ID:         s.genID.Generate(),
		CentreID:   centreID,
		Code:       code,
		RecordedAt: now,
		TimeOfDay:  timeOfDay,
		Status:     status,
		Remark:     strings.TrimSpace(req.Remark),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.Entry{}, err
	}

	if s.hub != nil {
		s.hub.Publish(liveevents.LiveEvent{
			Kind:       liveevents.KindVisionCreated,
			CentreID:   centreID.String(),
			Customer:   code,
			OccurredAt: now.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return entry, nil
}

func (s *Service) GetEntry(ctx context.Context, id snowflake.ID) (domain.Entry, error) {
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry == nil {
		return domain.Entry{}, domain.ErrEntryNotFound
	}
	return *entry, nil
}

func (s *Service) ListEntries(ctx context.Context, filter domain.ListEntryFilter) ([]domain.Entry, error) {
	return s.repo.List(ctx, s.db, filter)
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
