package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Visit is one customer transaction at a centre. The entry leg
// (cash1/online1) posts at check-in, the exit leg (cash2/online2) plus
// commissions at check-out.
type Visit struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CentreID         snowflake.ID `gorm:"not null;index" json:"centre_id"`
	StaffID          snowflake.ID `gorm:"not null;default:0" json:"staff_id,omitempty"`
	CustomerName     string       `gorm:"not null;default:''" json:"customer_name"`
	Phone            string       `gorm:"not null;default:'';index" json:"phone"`
	Service          string       `gorm:"not null;default:''" json:"service"`
	InTime           time.Time    `gorm:"not null" json:"in_time"`
	OutTime          *time.Time   `json:"out_time,omitempty"`
	Cash1            int64        `gorm:"not null;default:0" json:"cash1"`
	Online1          int64        `gorm:"not null;default:0" json:"online1"`
	Cash2            int64        `gorm:"not null;default:0" json:"cash2"`
	Online2          int64        `gorm:"not null;default:0" json:"online2"`
	CashCommission   int64        `gorm:"not null;default:0" json:"cash_commission"`
	OnlineCommission int64        `gorm:"not null;default:0" json:"online_commission"`
	TID1             string       `gorm:"column:tid1;not null;default:''" json:"tid1,omitempty"`
	TID2             string       `gorm:"column:tid2;not null;default:''" json:"tid2,omitempty"`
	Remark1          string       `gorm:"not null;default:''" json:"remark1,omitempty"`
	Remark2          string       `gorm:"not null;default:''" json:"remark2,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

func (Visit) TableName() string { return "visits" }

// Open reports whether the visit has not been checked out yet.
func (v Visit) Open() bool { return v.OutTime == nil }
