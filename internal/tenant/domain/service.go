package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ResolveSource reports which strategy produced the tenant, so the HTTP layer
// knows when to write the sticky session hint back.
type ResolveSource int

const (
	ResolvedNone ResolveSource = iota
	ResolvedByPath
	ResolvedBySession
	ResolvedByQuery
)

type ResolveRequest struct {
	// PathSlug is the slug segment of the current route, if any.
	PathSlug string
	// SessionTenantID is the sticky hint carried in session state; zero means unset.
	SessionTenantID int64
	// QuerySlug is the fallback query parameter for non-path-scoped endpoints.
	QuerySlug string
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (*Tenant, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Rename(ctx context.Context, id snowflake.ID, name, newSlug string) (*Tenant, error)
	Deactivate(ctx context.Context, id snowflake.ID) error
	UpdateSettings(ctx context.Context, id snowflake.ID, settings map[string]any) (*Tenant, error)

	// Resolve applies the path → session → query strategy order; first match
	// wins. Inactive tenants never resolve. All-miss is ErrTenantNotFound,
	// which callers must treat as "no tenant context", distinct from a denial.
	Resolve(ctx context.Context, req ResolveRequest) (*Tenant, ResolveSource, error)
}

type CreateTenantRequest struct {
	Name     string
	Slug     string
	Settings map[string]any
}

var (
	ErrTenantNotFound  = errors.New("tenant_not_found")
	ErrInvalidName     = errors.New("invalid_tenant_name")
	ErrInvalidSlug     = errors.New("invalid_tenant_slug")
	ErrSlugTaken       = errors.New("tenant_slug_taken")
	ErrInvalidCapacity = errors.New("invalid_capacity")
	ErrHasOpenBookings = errors.New("tenant_has_open_bookings")
)
