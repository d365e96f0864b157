package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Collection is a cash pickup from a centre. The running balance at the
// moment of collection is carried as PreviousBalance, then the centre
// balance starts again from zero.
type Collection struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	CentreID        snowflake.ID `gorm:"not null;index" json:"centre_id"`
	Amount          int64        `gorm:"not null" json:"amount"`
	FromDate        time.Time    `gorm:"not null" json:"from_date"`
	ToDate          time.Time    `gorm:"not null" json:"to_date"`
	Remark          string       `gorm:"not null;default:''" json:"remark,omitempty"`
	CollectedBy     snowflake.ID `gorm:"not null;default:0" json:"collected_by"`
	PreviousBalance int64        `gorm:"not null;default:0" json:"previous_balance"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (Collection) TableName() string { return "cash_collections" }

type CollectRequest struct {
	CentreID    snowflake.ID
	FromDate    time.Time
	ToDate      time.Time
	Remark      string
	CollectedBy snowflake.ID
}

type Service interface {
	// PostEntryPayment credits the centre balance with the check-in leg.
	// The db handle is passed per call so a caller can post inside its
	// own transaction alongside the visit write.
	PostEntryPayment(ctx context.Context, db *gorm.DB, centreID snowflake.ID, cash, online int64) error
	// PostExitPayment credits the centre balance with the check-out leg,
	// netting commissions when the centre pays on the plus criteria.
	PostExitPayment(ctx context.Context, db *gorm.DB, centreID snowflake.ID, cash, online, cashComm, onlineComm int64) error
	// Collect books a cash pickup and resets the running balance to zero.
	Collect(ctx context.Context, req CollectRequest) (Collection, error)
	ListCollections(ctx context.Context, centreID snowflake.ID) ([]Collection, error)
}

var (
	ErrCentreNotFound = errors.New("centre_not_found")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidRange   = errors.New("invalid_range")
)
