// Package domain contains persistence models for the tenant service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SettingSlotsPerTimeslot is the per-tenant booking capacity key. The value
// is the number of concurrent non-terminal bookings allowed per (date, time).
const SettingSlotsPerTimeslot = "slots_per_timeslot"

// DefaultCapacity applies when the setting is absent or malformed.
const DefaultCapacity = 1

// Tenant represents an isolated barbershop account.
type Tenant struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ExternalID string            `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	Name       string            `gorm:"type:text;not null" json:"name"`
	Slug       string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	Active     bool              `gorm:"not null;default:true" json:"active"`
	Settings   datatypes.JSONMap `gorm:"type:jsonb" json:"settings"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// Capacity returns the configured slots-per-timeslot, clamped to at least 1.
func (t Tenant) Capacity() int {
	raw, ok := t.Settings[SettingSlotsPerTimeslot]
	if !ok {
		return DefaultCapacity
	}
	switch v := raw.(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	case int64:
		if v >= 1 {
			return int(v)
		}
	}
	return DefaultCapacity
}
