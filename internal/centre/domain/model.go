package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Pay criteria values controlling how check-out payments post to the
// centre running balance.
const (
	PayCriteriaPlus  = "plus"
	PayCriteriaMinus = "minus"
)

type Centre struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID        snowflake.ID `gorm:"not null;index" json:"branch_id"`
	Name            string       `gorm:"not null" json:"name"`
	PayCriteria     string       `gorm:"not null;default:minus" json:"pay_criteria"`
	Balance         int64        `gorm:"not null;default:0" json:"balance"`
	PreviousBalance int64        `gorm:"not null;default:0" json:"previous_balance"`
	Active          bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

func (Centre) TableName() string { return "centres" }

// ValidPayCriteria reports whether v is a known pay criteria value.
func ValidPayCriteria(v string) bool {
	return v == PayCriteriaPlus || v == PayCriteriaMinus
}
