// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AccountKind distinguishes platform operators from tenant-scoped accounts.
// A super-admin principal has no memberships; it passes every access check.
type AccountKind string

const (
	KindSuperAdmin AccountKind = "super_admin"
	KindMember     AccountKind = "member"
)

// Principal represents an authenticated actor.
type Principal struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	ExternalID   string            `gorm:"type:text;not null;uniqueIndex"`
	Kind         AccountKind       `gorm:"type:text;not null;default:'member'"`
	DisplayName  string            `gorm:"type:text;not null"`
	Email        string            `gorm:"type:text;uniqueIndex"`
	Phone        string            `gorm:"type:text"`
	PasswordHash *string           `gorm:"type:text"`
	Active       bool              `gorm:"not null;default:true"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Principal) TableName() string { return "principals" }

// IsSuperAdmin reports whether the principal bypasses tenant membership checks.
func (p Principal) IsSuperAdmin() bool { return p.Kind == KindSuperAdmin }

// Session represents a persisted login session. ActiveTenantID is the sticky
// tenant hint written back by the resolver on path-based resolution.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	PrincipalID      snowflake.ID `gorm:"column:principal_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	ActiveTenantID   *int64       `gorm:"column:active_tenant_id"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// PasswordReset is a single-use, short-lived reset token.
type PasswordReset struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	PrincipalID snowflake.ID `gorm:"column:principal_id;not null;index"`
	TokenHash   string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt   time.Time    `gorm:"column:expires_at;not null"`
	UsedAt      *time.Time   `gorm:"column:used_at"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PasswordReset) TableName() string { return "password_resets" }
