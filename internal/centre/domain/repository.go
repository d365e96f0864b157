package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, centre *Centre) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Centre, error)
	List(ctx context.Context, db *gorm.DB, filter ListCentreFilter) ([]Centre, error)
	Update(ctx context.Context, db *gorm.DB, centre *Centre) error
}
