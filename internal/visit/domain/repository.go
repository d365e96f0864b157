package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, visit *Visit) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Visit, error)
	List(ctx context.Context, db *gorm.DB, filter ListVisitFilter, page pagination.Pagination) ([]*Visit, error)
	UpdateExitLeg(ctx context.Context, db *gorm.DB, visit *Visit) error
}
