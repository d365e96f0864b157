package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role values carried in tokens and checked by route guards.
const (
	RoleAdmin         = "admin"
	RoleRegionManager = "region_manager"
	RoleBranchManager = "branch_manager"
	RoleCentreManager = "centre_manager"
	RoleVision        = "vision"
	RoleFrontDesk     = "front_desk"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex" json:"username"`
	Name         string       `gorm:"not null" json:"name"`
	Phone        string       `gorm:"not null;default:''" json:"phone,omitempty"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         string       `gorm:"not null" json:"role"`
	RegionID     snowflake.ID `gorm:"not null;default:0" json:"region_id,omitempty"`
	BranchID     snowflake.ID `gorm:"not null;default:0" json:"branch_id,omitempty"`
	CentreID     snowflake.ID `gorm:"not null;default:0" json:"centre_id,omitempty"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleRegionManager, RoleBranchManager, RoleCentreManager, RoleVision, RoleFrontDesk:
		return true
	default:
		return false
	}
}
