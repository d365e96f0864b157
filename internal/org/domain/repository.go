package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertRegion(ctx context.Context, db *gorm.DB, region *Region) error
	FindRegionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Region, error)
	FindRegionByName(ctx context.Context, db *gorm.DB, name string) (*Region, error)
	ListRegions(ctx context.Context, db *gorm.DB) ([]Region, error)
	UpdateRegion(ctx context.Context, db *gorm.DB, region *Region) error

	InsertBranch(ctx context.Context, db *gorm.DB, branch *Branch) error
	FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Branch, error)
	ListBranches(ctx context.Context, db *gorm.DB, regionID snowflake.ID) ([]Branch, error)
	UpdateBranch(ctx context.Context, db *gorm.DB, branch *Branch) error
}
