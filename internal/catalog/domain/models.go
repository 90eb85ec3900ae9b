// Package domain contains the service catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Offering is a bookable service a tenant sells: a haircut, a beard trim.
// Prices are integer cents; durations are whole minutes.
type Offering struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;index:idx_offerings_tenant" json:"tenant_id"`
	ExternalID      string       `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	Description     string       `gorm:"type:text" json:"description"`
	PriceCents      int64        `gorm:"not null" json:"price_cents"`
	DurationMinutes int          `gorm:"not null" json:"duration_minutes"`
	Active          bool         `gorm:"not null;default:true" json:"active"`
	DisplayOrder    int          `gorm:"not null;default:0" json:"display_order"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Offering) TableName() string { return "offerings" }
