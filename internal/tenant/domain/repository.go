package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	FindByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	// OpenBookingCount counts non-terminal bookings owned by the tenant; a
	// tenant with open bookings cannot be deactivated.
	OpenBookingCount(ctx context.Context, id snowflake.ID) (int64, error)
}
