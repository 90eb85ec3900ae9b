package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOfferingNotFound = errors.New("offering_not_found")
	ErrInvalidOffering  = errors.New("invalid_offering")
	ErrOfferingInactive = errors.New("offering_inactive")
)

type CreateOfferingRequest struct {
	TenantID        snowflake.ID
	Name            string
	Description     string
	PriceCents      int64
	DurationMinutes int
	DisplayOrder    int
}

type UpdateOfferingRequest struct {
	Name            *string
	Description     *string
	PriceCents      *int64
	DurationMinutes *int
	DisplayOrder    *int
	Active          *bool
}

// Service manages the tenant's bookable catalog. Lookups are always
// tenant-scoped so one tenant can never read or book another's offerings.
type Service interface {
	Create(ctx context.Context, req CreateOfferingRequest) (*Offering, error)
	GetByID(ctx context.Context, tenantID, id snowflake.ID) (*Offering, error)
	List(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]Offering, error)
	Update(ctx context.Context, tenantID, id snowflake.ID, req UpdateOfferingRequest) (*Offering, error)
	Deactivate(ctx context.Context, tenantID, id snowflake.ID) error
}

type Repository interface {
	Create(ctx context.Context, o *Offering) error
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*Offering, error)
	List(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]Offering, error)
	Update(ctx context.Context, o *Offering) error
}
