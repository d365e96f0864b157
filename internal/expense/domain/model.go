package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Expense is a cost shared across one or more centres. Aggregation
// charges the full amount to every linked centre.
type Expense struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Amount     int64          `gorm:"not null" json:"amount"`
	Reason     string         `gorm:"not null;default:''" json:"reason"`
	IncurredAt time.Time      `gorm:"not null;index" json:"incurred_at"`
	CreatedBy  snowflake.ID   `gorm:"not null;default:0" json:"created_by,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	CentreIDs  []snowflake.ID `gorm:"-" json:"centre_ids"`
}

func (Expense) TableName() string { return "expenses" }

type ExpenseCentre struct {
	ExpenseID snowflake.ID `gorm:"primaryKey" json:"expense_id"`
	CentreID  snowflake.ID `gorm:"primaryKey" json:"centre_id"`
}

func (ExpenseCentre) TableName() string { return "expense_centres" }
