package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCentreRequest struct {
	BranchID    string `json:"branch_id"`
	Name        string `json:"name"`
	PayCriteria string `json:"pay_criteria"`
}

type UpdateCentreRequest struct {
	Name        *string `json:"name"`
	PayCriteria *string `json:"pay_criteria"`
	Active      *bool   `json:"active"`
}

type ListCentreFilter struct {
	BranchID snowflake.ID
	RegionID snowflake.ID
	Active   *bool
}

type Service interface {
	CreateCentre(context.Context, CreateCentreRequest) (Centre, error)
	GetCentre(ctx context.Context, id snowflake.ID) (Centre, error)
	ListCentres(ctx context.Context, filter ListCentreFilter) ([]Centre, error)
	UpdateCentre(ctx context.Context, id snowflake.ID, req UpdateCentreRequest) (Centre, error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidBranch      = errors.New("invalid_branch")
	ErrInvalidPayCriteria = errors.New("invalid_pay_criteria")
	ErrCentreNotFound     = errors.New("centre_not_found")
	ErrCentreInactive     = errors.New("centre_inactive")
)
