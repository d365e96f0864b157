package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	orgdomain "github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	OrgRepo orgdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	orgRepo orgdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("centre.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		orgRepo: p.OrgRepo,
	}
}

func (s *Service) CreateCentre(ctx context.Context, req domain.CreateCentreRequest) (domain.Centre, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Centre{}, domain.ErrInvalidName
	}

	branchID, err := parseID(req.BranchID)
	if err != nil || branchID == 0 {
		return domain.Centre{}, domain.ErrInvalidBranch
	}
	branch, err := s.orgRepo.FindBranchByID(ctx, s.db, branchID)
	if err != nil {
		return domain.Centre{}, err
	}
	if branch == nil {
		return domain.Centre{}, orgdomain.ErrBranchNotFound
	}

	criteria := strings.TrimSpace(req.PayCriteria)
	if criteria == "" {
		criteria = domain.PayCriteriaMinus
	}
	if !domain.ValidPayCriteria(criteria) {
		return domain.Centre{}, domain.ErrInvalidPayCriteria
	}

	now := s.clock.Now().UTC()
	centre := domain.Centre{
		ID:          s.genID.Generate(),
		BranchID:    branchID,
		Name:        name,
		PayCriteria: criteria,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &centre); err != nil {
		return domain.Centre{}, err
	}

	s.log.Info("centre created",
		zap.String("centre_id", centre.ID.String()),
		zap.String("branch_id", branchID.String()),
		zap.String("pay_criteria", criteria),
	)
	return centre, nil
}

func (s *Service) GetCentre(ctx context.Context, id snowflake.ID) (domain.Centre, error) {
	centre, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Centre{}, err
	}
	if centre == nil {
		return domain.Centre{}, domain.ErrCentreNotFound
	}
	return *centre, nil
}

func (s *Service) ListCentres(ctx context.Context, filter domain.ListCentreFilter) ([]domain.Centre, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) UpdateCentre(ctx context.Context, id snowflake.ID, req domain.UpdateCentreRequest) (domain.Centre, error) {
	centre, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Centre{}, err
	}
	if centre == nil {
		return domain.Centre{}, domain.ErrCentreNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Centre{}, domain.ErrInvalidName
		}
		centre.Name = name
	}
	if req.PayCriteria != nil {
		if !domain.ValidPayCriteria(*req.PayCriteria) {
			return domain.Centre{}, domain.ErrInvalidPayCriteria
		}
		centre.PayCriteria = *req.PayCriteria
	}
	if req.Active != nil {
		centre.Active = *req.Active
	}
	centre.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, centre); err != nil {
		return domain.Centre{}, err
	}
	return *centre, nil
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
