// Package domain contains the membership model and the access gate.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the tenant-scoped capability of a principal. The ordering is total:
// client < staff < admin. The platform super-admin is not a Role; it is an
// account kind checked before any membership lookup.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Level returns the privilege rank used for gate comparisons. Unknown roles
// rank below client so a corrupt row can never satisfy a check.
func (r Role) Level() int {
	switch r {
	case RoleClient:
		return 1
	case RoleStaff:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleStaff || r == RoleAdmin
}

// Membership binds a principal to a tenant with a role. One row per
// (tenant, principal); role changes update the row in place.
type Membership struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	TenantID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_membership_tenant_principal,priority:1"`
	PrincipalID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_membership_tenant_principal,priority:2"`
	Role        Role         `gorm:"type:text;not null"`
	Active      bool         `gorm:"not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }
