package domain

import (
	"testing"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
)

func TestDecideSuperAdminNeedsNoMembership(t *testing.T) {
	for _, required := range []Role{RoleClient, RoleStaff, RoleAdmin} {
		if err := Decide(identitydomain.KindSuperAdmin, nil, required); err != nil {
			t.Fatalf("super admin denied for %s: %v", required, err)
		}
	}
}

func TestDecideNoMembership(t *testing.T) {
	if err := Decide(identitydomain.KindMember, nil, RoleClient); err != ErrNotMember {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestDecideInactiveMembership(t *testing.T) {
	m := &Membership{Role: RoleAdmin, Active: false}
	if err := Decide(identitydomain.KindMember, m, RoleClient); err != ErrNotMember {
		t.Fatalf("expected ErrNotMember for inactive membership, got %v", err)
	}
}

func TestDecideRoleOrdering(t *testing.T) {
	cases := []struct {
		have     Role
		required Role
		want     error
	}{
		{RoleClient, RoleClient, nil},
		{RoleClient, RoleStaff, ErrInsufficientRole},
		{RoleClient, RoleAdmin, ErrInsufficientRole},
		{RoleStaff, RoleClient, nil},
		{RoleStaff, RoleStaff, nil},
		{RoleStaff, RoleAdmin, ErrInsufficientRole},
		{RoleAdmin, RoleClient, nil},
		{RoleAdmin, RoleStaff, nil},
		{RoleAdmin, RoleAdmin, nil},
	}

	for _, tc := range cases {
		m := &Membership{Role: tc.have, Active: true}
		if err := Decide(identitydomain.KindMember, m, tc.required); err != tc.want {
			t.Fatalf("have=%s required=%s: expected %v, got %v", tc.have, tc.required, tc.want, err)
		}
	}
}

func TestDecideUnknownRoleGrantsNothing(t *testing.T) {
	m := &Membership{Role: Role("owner"), Active: true}
	if err := Decide(identitydomain.KindMember, m, RoleClient); err != ErrInsufficientRole {
		t.Fatalf("expected ErrInsufficientRole for unknown role, got %v", err)
	}
}
