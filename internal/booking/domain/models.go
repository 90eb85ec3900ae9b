// Package domain contains the booking model and its state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusInService Status = "in_service"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the closed set of allowed status moves. Absence means the
// move is rejected; terminal states have no outgoing edges.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInService, StatusCancelled},
	StatusInService: {StatusCompleted, StatusCancelled},
}

// Valid reports whether the status is one of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInService, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from → to is an allowed move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is one client's hold on a timeslot. SlotSeq is the capacity
// ordinal: non-terminal bookings on the same (tenant, date, start) each own
// a distinct ordinal below the tenant capacity, enforced by a unique index.
// Terminal transitions null the ordinal so the seat frees up while the row
// stays for history.
type Booking struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:idx_bookings_tenant_date,priority:1;uniqueIndex:ux_bookings_slot,priority:1" json:"tenant_id"`
	ExternalID string       `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	ClientID   snowflake.ID `gorm:"not null;index:idx_bookings_client" json:"client_id"`
	StaffID    snowflake.ID `gorm:"not null;default:0" json:"staff_id"`
	OfferingID snowflake.ID `gorm:"not null" json:"offering_id"`
	Date       string       `gorm:"type:text;not null;index:idx_bookings_tenant_date,priority:2;uniqueIndex:ux_bookings_slot,priority:2" json:"date"`
	StartTime  string       `gorm:"type:text;not null;uniqueIndex:ux_bookings_slot,priority:3" json:"start_time"`
	EndTime    string       `gorm:"type:text;not null" json:"end_time"`
	Status     Status       `gorm:"type:text;not null" json:"status"`
	SlotSeq    *int         `gorm:"uniqueIndex:ux_bookings_slot,priority:4" json:"slot_seq,omitempty"`
	Notes      string       `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }
