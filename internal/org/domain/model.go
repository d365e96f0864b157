package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Region struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;uniqueIndex" json:"name"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Region) TableName() string { return "regions" }

type Branch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RegionID  snowflake.ID `gorm:"not null;index" json:"region_id"`
	Name      string       `gorm:"not null" json:"name"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Branch) TableName() string { return "branches" }
