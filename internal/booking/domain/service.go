package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/pkg/db/pagination"
)

var (
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrInvalidBooking    = errors.New("invalid_booking")
	ErrSlotNotOffered    = errors.New("slot_not_offered")
	ErrSlotFull          = errors.New("slot_full")
	ErrPastDate          = errors.New("booking_in_past")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrAlreadyInStatus   = errors.New("already_in_status")
	ErrNotOwner          = errors.New("not_booking_owner")
)

type CreateBookingRequest struct {
	TenantID   snowflake.ID
	ClientID   snowflake.ID
	StaffID    snowflake.ID
	OfferingID snowflake.ID
	Date       string
	StartTime  string
	Notes      string
}

type ListBookingsRequest struct {
	TenantID snowflake.ID
	ClientID snowflake.ID
	Date     string
	Statuses []Status
	pagination.Pagination
}

type ListBookingsResponse struct {
	Bookings []*Booking           `json:"bookings"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

// Service creates bookings and drives them through the state machine.
type Service interface {
	// Create books a slot. The start time must be offered by the weekly
	// template and the timeslot must have a free capacity ordinal;
	// concurrent requests for the last seat are decided by the unique slot
	// index, losers get ErrSlotFull.
	Create(ctx context.Context, req CreateBookingRequest) (*Booking, error)

	GetByID(ctx context.Context, tenantID, id snowflake.ID) (*Booking, error)

	// Transition moves the booking to next. Requesting the current status
	// again is rejected so a stale screen cannot double-apply an action.
	// Completion consumes a plan visit; both terminal states release the
	// capacity ordinal.
	Transition(ctx context.Context, tenantID, id snowflake.ID, next Status) (*Booking, error)

	// CancelOwn cancels the client's own booking; the owner check runs
	// before the state machine so someone else's id never leaks state.
	CancelOwn(ctx context.Context, tenantID, id, clientID snowflake.ID) (*Booking, error)

	List(ctx context.Context, req ListBookingsRequest) (*ListBookingsResponse, error)

	// Occupancy reports how many non-terminal bookings hold the timeslot.
	Occupancy(ctx context.Context, tenantID snowflake.ID, date, startTime string) (int, error)
}

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, b *Booking) error
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id snowflake.ID) (*Booking, error)
	// ActiveAtSlotForUpdate locks and returns the non-terminal bookings on
	// the timeslot, ordered by ordinal.
	ActiveAtSlotForUpdate(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, date, startTime string) ([]Booking, error)
	Update(ctx context.Context, tx *gorm.DB, b *Booking) error
	List(ctx context.Context, req ListBookingsRequest) ([]*Booking, error)
	CountActiveAtSlot(ctx context.Context, tenantID snowflake.ID, date, startTime string) (int, error)
}
