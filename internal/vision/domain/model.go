package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entry statuses as reported by the camera operator.
const (
	StatusIn     = "In"
	StatusOut    = "Out"
	StatusReturn = "Return"
)

// Entry is a camera-side observation of a customer at a centre. Code is
// whatever the operator typed — usually the customer's phone number,
// sometimes a name — and is the join key for reconciliation.
type Entry struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CentreID   snowflake.ID `gorm:"not null;index" json:"centre_id"`
	Code       string       `gorm:"not null;index" json:"code"`
	RecordedAt time.Time    `gorm:"not null" json:"recorded_at"`
	TimeOfDay  string       `gorm:"not null;default:''" json:"time_of_day,omitempty"`
	Status     string       `gorm:"not null;default:In" json:"status"`
	Remark     string       `gorm:"not null;default:''" json:"remark,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

func (Entry) TableName() string { return "vision_entries" }

// ValidStatus reports whether v is a known entry status.
func ValidStatus(v string) bool {
	return v == StatusIn || v == StatusOut || v == StatusReturn
}
