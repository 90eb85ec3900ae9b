// Package domain contains membership plan and subscription models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Plan is a tenant-defined package of visits, e.g. "4 cuts a month".
type Plan struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID   `gorm:"not null;index:idx_plans_tenant" json:"tenant_id"`
	ExternalID     string         `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	Name           string         `gorm:"type:text;not null" json:"name"`
	PriceCents     int64          `gorm:"not null" json:"price_cents"`
	VisitsPerCycle int            `gorm:"not null" json:"visits_per_cycle"`
	CycleDays      int            `gorm:"not null;default:30" json:"cycle_days"`
	Benefits       datatypes.JSON `gorm:"type:jsonb" json:"benefits,omitempty"`
	Active         bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// SubscriptionStatus is the lifecycle state of a client subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription binds a client to a plan and tracks the visits left in the
// current cycle. At most one active subscription per (tenant, client).
type Subscription struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID       `gorm:"not null;index:idx_subscriptions_tenant_client,priority:1" json:"tenant_id"`
	ClientID        snowflake.ID       `gorm:"not null;index:idx_subscriptions_tenant_client,priority:2" json:"client_id"`
	PlanID          snowflake.ID       `gorm:"not null" json:"plan_id"`
	Status          SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	RemainingVisits int                `gorm:"not null" json:"remaining_visits"`
	CycleStart      time.Time          `gorm:"not null" json:"cycle_start"`
	CycleEnd        time.Time          `gorm:"not null" json:"cycle_end"`
	CreatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
