package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/org/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRegion(ctx context.Context, db *gorm.DB, region *domain.Region) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO regions (id, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		region.ID,
		region.Name,
		region.Active,
		region.CreatedAt,
		region.UpdatedAt,
	).Error
}

func (r *repo) FindRegionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM regions WHERE id = ?`, id,
	).Scan(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

func (r *repo) FindRegionByName(ctx context.Context, db *gorm.DB, name string) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM regions WHERE name = ?`, name,
	).Scan(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

func (r *repo) ListRegions(ctx context.Context, db *gorm.DB) ([]domain.Region, error) {
	var regions []domain.Region
	err := db.WithContext(ctx).
		Model(&domain.Region{}).
		Order("name asc, id asc").
		Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *repo) UpdateRegion(ctx context.Context, db *gorm.DB, region *domain.Region) error {
	return db.WithContext(ctx).Exec(
		`UPDATE regions SET name = ?, active = ?, updated_at = ? WHERE id = ?`,
		region.Name,
		region.Active,
		region.UpdatedAt,
		region.ID,
	).Error
}

func (r *repo) InsertBranch(ctx context.Context, db *gorm.DB, branch *domain.Branch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO branches (id, region_id, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		branch.ID,
		branch.RegionID,
		branch.Name,
		branch.Active,
		branch.CreatedAt,
		branch.UpdatedAt,
	).Error
}

func (r *repo) FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Branch, error) {
	var branch domain.Branch
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM branches WHERE id = ?`, id,
	).Scan(&branch).Error
	if err != nil {
		return nil, err
	}
	if branch.ID == 0 {
		return nil, nil
	}
	return &branch, nil
}

func (r *repo) ListBranches(ctx context.Context, db *gorm.DB, regionID snowflake.ID) ([]domain.Branch, error) {
	var branches []domain.Branch
	stmt := db.WithContext(ctx).Model(&domain.Branch{})
	if regionID != 0 {
		stmt = stmt.Where("region_id = ?", regionID)
	}
	err := stmt.Order("name asc, id asc").Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repo) UpdateBranch(ctx context.Context, db *gorm.DB, branch *domain.Branch) error {
	return db.WithContext(ctx).Exec(
		`UPDATE branches SET name = ?, active = ?, updated_at = ? WHERE id = ?`,
		branch.Name,
		branch.Active,
		branch.UpdatedAt,
		branch.ID,
	).Error
}
