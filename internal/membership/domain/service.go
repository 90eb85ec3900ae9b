package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
)

var (
	ErrMembershipNotFound = errors.New("membership: not found")
	ErrInvalidRole        = errors.New("membership: invalid role")
)

// Service checks and manages tenant memberships.
type Service interface {
	// Check loads the principal's membership in the tenant and applies the
	// gate. Returns nil when allowed, ErrNotMember or ErrInsufficientRole
	// when denied.
	Check(ctx context.Context, principal *identitydomain.Principal, tenantID snowflake.ID, required Role) error

	// Get returns the membership row, or ErrMembershipNotFound.
	Get(ctx context.Context, tenantID, principalID snowflake.ID) (*Membership, error)

	// EnsureClient gives the principal a client membership in the tenant if
	// they have none, returning the existing row otherwise. It never
	// upgrades or downgrades an existing role.
	EnsureClient(ctx context.Context, tenantID, principalID snowflake.ID) (*Membership, error)

	// Grant creates a membership with the given role, or updates the role
	// of the existing row.
	Grant(ctx context.Context, tenantID, principalID snowflake.ID, role Role) (*Membership, error)

	// Revoke deactivates the membership.
	Revoke(ctx context.Context, tenantID, principalID snowflake.ID) error

	// ListByTenant returns the memberships of a tenant.
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Membership, error)

	// ListByPrincipal returns the principal's active memberships across
	// tenants.
	ListByPrincipal(ctx context.Context, principalID snowflake.ID) ([]Membership, error)
}

// Repository persists memberships.
type Repository interface {
	Create(ctx context.Context, m *Membership) error
	FindByTenantAndPrincipal(ctx context.Context, tenantID, principalID snowflake.ID) (*Membership, error)
	Update(ctx context.Context, m *Membership) error
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Membership, error)
	ListByPrincipal(ctx context.Context, principalID snowflake.ID) ([]Membership, error)
}
