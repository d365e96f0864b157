package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Entry, error)
	List(ctx context.Context, db *gorm.DB, filter ListEntryFilter) ([]Entry, error)
}
