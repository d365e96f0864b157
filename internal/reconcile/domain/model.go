package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Missed-entry discriminators. CentreMissed is retained for rows written
// by older deployments; current sweeps record only the two genuine-gap
// types.
const (
	TypeCentreMissed   = "Centre Missed"
	TypeVisionMissed   = "Vision Missed"
	TypeCustomerMissed = "Customer Missed"
)

// MissedEntry flags a visit or vision entry with no counterpart in the
// other stream. The unique (visit_id, vision_id, type) triple doubles as
// the de-duplication marker: a row is written once and never updated.
type MissedEntry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Type      string       `gorm:"not null" json:"type"`
	VisitID   snowflake.ID `gorm:"not null;default:0" json:"visit_id,omitempty"`
	VisionID  snowflake.ID `gorm:"not null;default:0" json:"vision_id,omitempty"`
	CentreID  snowflake.ID `gorm:"not null;default:0;index" json:"centre_id"`
	Notified  bool         `gorm:"not null;default:false" json:"notified"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (MissedEntry) TableName() string { return "missed_entries" }

type ListMissedFilter struct {
	CentreID snowflake.ID
	Type     string
	From     *time.Time
	To       *time.Time
}

type Service interface {
	// Sweep reconciles recent visits against vision entries and records
	// gaps. Safe to call repeatedly; duplicate gaps are ignored.
	Sweep(ctx context.Context) error
	ListMissed(ctx context.Context, filter ListMissedFilter) ([]MissedEntry, error)
}
