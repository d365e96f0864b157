package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	List(ctx context.Context, db *gorm.DB, role string, centreID snowflake.ID) ([]*User, error)
	// FindByRoleAndCentre returns the first active user holding role for the
	// given centre, used to target missed-entry notifications.
	FindByRoleAndCentre(ctx context.Context, db *gorm.DB, role string, centreID snowflake.ID) (*User, error)
}
