package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, expense *Expense) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, db *gorm.DB, filter ListExpenseFilter) ([]Expense, error)
	CentreIDs(ctx context.Context, db *gorm.DB, expenseID snowflake.ID) ([]snowflake.ID, error)
}
