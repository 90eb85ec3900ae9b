package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidTimeSlot  = errors.New("invalid_time_slot")
	ErrNotWeekStart     = errors.New("week_start_not_monday")
	ErrUnknownDay       = errors.New("unknown_day_name")
	ErrTemplateNotFound = errors.New("template_not_found")
)

// Service reads and edits weekly availability. Reads are materializing: asking
// for a week that has never been touched creates it from the default pattern,
// so callers always see a full seven-day schedule.
type Service interface {
	// GetWeek returns the template for the week containing date, creating it
	// from the default pattern on first access. staffID zero addresses the
	// tenant-wide template.
	GetWeek(ctx context.Context, tenantID, staffID snowflake.ID, date string) (*WeeklyTemplate, error)

	// SlotsFor returns the bookable start times for one date, already
	// resolved through the staff override when one exists. An inactive day
	// yields an empty slice, not an error.
	SlotsFor(ctx context.Context, tenantID, staffID snowflake.ID, date string) ([]string, error)

	// SetDay replaces a single day's schedule inside the week containing
	// weekStart. Slots are validated, deduplicated and sorted.
	SetDay(ctx context.Context, tenantID, staffID snowflake.ID, date string, day DaySchedule) (*WeeklyTemplate, error)

	// SetWeek replaces the whole pattern for the week starting at weekStart,
	// which must be a Monday.
	SetWeek(ctx context.Context, tenantID, staffID snowflake.ID, weekStart string, pattern WeekPattern) (*WeeklyTemplate, error)
}

type Repository interface {
	Create(ctx context.Context, t *WeeklyTemplate) error
	Find(ctx context.Context, tenantID, staffID snowflake.ID, weekStart string) (*WeeklyTemplate, error)
	Update(ctx context.Context, t *WeeklyTemplate) error
}
