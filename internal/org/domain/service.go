package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRegionRequest struct {
	Name string `json:"name"`
}

type UpdateRegionRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type CreateBranchRequest struct {
	RegionID string `json:"region_id"`
	Name     string `json:"name"`
}

type UpdateBranchRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type Service interface {
	CreateRegion(context.Context, CreateRegionRequest) (Region, error)
	GetRegion(ctx context.Context, id snowflake.ID) (Region, error)
	ListRegions(ctx context.Context) ([]Region, error)
	UpdateRegion(ctx context.Context, id snowflake.ID, req UpdateRegionRequest) (Region, error)

	CreateBranch(context.Context, CreateBranchRequest) (Branch, error)
	GetBranch(ctx context.Context, id snowflake.ID) (Branch, error)
	ListBranches(ctx context.Context, regionID snowflake.ID) ([]Branch, error)
	UpdateBranch(ctx context.Context, id snowflake.ID, req UpdateBranchRequest) (Branch, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidRegion  = errors.New("invalid_region")
	ErrRegionExists   = errors.New("region_exists")
	ErrRegionNotFound = errors.New("region_not_found")
	ErrBranchNotFound = errors.New("branch_not_found")
	ErrRegionInactive = errors.New("region_inactive")
)
