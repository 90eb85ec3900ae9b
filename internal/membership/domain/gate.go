package domain

import (
	"errors"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
)

var (
	// ErrNotMember means the principal has no active membership in the tenant.
	ErrNotMember = errors.New("membership: principal is not a member of tenant")

	// ErrInsufficientRole means the membership exists but its role ranks
	// below the required one.
	ErrInsufficientRole = errors.New("membership: role does not grant the required capability")
)

// Decide applies the access rule for a tenant-scoped action. It is a pure
// function over the loaded state: super-admin accounts pass regardless of
// membership, everyone else needs an active membership in the target tenant
// whose role ranks at or above required. A membership in another tenant
// grants nothing here; callers must load the membership for the tenant
// being acted on.
func Decide(kind identitydomain.AccountKind, m *Membership, required Role) error {
	if kind == identitydomain.KindSuperAdmin {
		return nil
	}
	if m == nil || !m.Active {
		return ErrNotMember
	}
	if m.Role.Level() < required.Level() {
		return ErrInsufficientRole
	}
	return nil
}
