package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("org.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateRegion(ctx context.Context, req domain.CreateRegionRequest) (domain.Region, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Region{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindRegionByName(ctx, s.db, name)
	if err != nil {
		return domain.Region{}, err
	}
	if existing != nil {
		return domain.Region{}, domain.ErrRegionExists
	}

	now := s.clock.Now().UTC()
	region := domain.Region{
		ID:        s.genID.Generate(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertRegion(ctx, s.db, &region); err != nil {
		return domain.Region{}, err
	}

	s.log.Info("region created",
		zap.String("region_id", region.ID.String()),
		zap.String("name", region.Name),
	)
	return region, nil
}

func (s *Service) GetRegion(ctx context.Context, id snowflake.ID) (domain.Region, error) {
	region, err := s.repo.FindRegionByID(ctx, s.db, id)
	if err != nil {
		return domain.Region{}, err
	}
	if region == nil {
		return domain.Region{}, domain.ErrRegionNotFound
	}
	return *region, nil
}

func (s *Service) ListRegions(ctx context.Context) ([]domain.Region, error) {
	return s.repo.ListRegions(ctx, s.db)
}

func (s *Service) UpdateRegion(ctx context.Context, id snowflake.ID, req domain.UpdateRegionRequest) (domain.Region, error) {
	region, err := s.repo.FindRegionByID(ctx, s.db, id)
	if err != nil {
		return domain.Region{}, err
	}
	if region == nil {
		return domain.Region{}, domain.ErrRegionNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Region{}, domain.ErrInvalidName
		}
		region.Name = name
	}
	if req.Active != nil {
		region.Active = *req.Active
	}
	region.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateRegion(ctx, s.db, region); err != nil {
		return domain.Region{}, err
	}
	return *region, nil
}

func (s *Service) CreateBranch(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Branch{}, domain.ErrInvalidName
	}
	regionID, err := parseID(req.RegionID)
	if err != nil || regionID == 0 {
		return domain.Branch{}, domain.ErrInvalidRegion
	}

	region, err := s.repo.FindRegionByID(ctx, s.db, regionID)
	if err != nil {
		return domain.Branch{}, err
	}
	if region == nil {
		return domain.Branch{}, domain.ErrRegionNotFound
	}
	if !region.Active {
		return domain.Branch{}, domain.ErrRegionInactive
	}

	now := s.clock.Now().UTC()
	branch := domain.Branch{
		ID:        s.genID.Generate(),
		RegionID:  regionID,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertBranch(ctx, s.db, &branch); err != nil {
		return domain.Branch{}, err
	}

	s.log.Info("branch created",
		zap.String("branch_id", branch.ID.String()),
		zap.String("region_id", regionID.String()),
		zap.String("name", branch.Name),
	)
	return branch, nil
}

func (s *Service) GetBranch(ctx context.Context, id snowflake.ID) (domain.Branch, error) {
	branch, err := s.repo.FindBranchByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if branch == nil {
		return domain.Branch{}, domain.ErrBranchNotFound
	}
	return *branch, nil
}

func (s *Service) ListBranches(ctx context.Context, regionID snowflake.ID) ([]domain.Branch, error) {
	return s.repo.ListBranches(ctx, s.db, regionID)
}

func (s *Service) UpdateBranch(ctx context.Context, id snowflake.ID, req domain.UpdateBranchRequest) (domain.Branch, error) {
	branch, err := s.repo.FindBranchByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if branch == nil {
		return domain.Branch{}, domain.ErrBranchNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Branch{}, domain.ErrInvalidName
		}
		branch.Name = name
	}
	if req.Active != nil {
		branch.Active = *req.Active
	}
	branch.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateBranch(ctx, s.db, branch); err != nil {
		return domain.Branch{}, err
	}
	return *branch, nil
}

func parseID(raw string) (snowflake.ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(v), nil
}
