package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	"github.com/chairbook/chairbook/internal/membership/domain"
	"github.com/chairbook/chairbook/pkg/db"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

// New constructs the membership service.
func New(repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{repo: repo, genID: genID, log: log}
}

func (s *service) Check(ctx context.Context, principal *identitydomain.Principal, tenantID snowflake.ID, required domain.Role) error {
	if principal == nil {
		return domain.ErrNotMember
	}
	if principal.IsSuperAdmin() {
		return domain.Decide(principal.Kind, nil, required)
	}
	m, err := s.repo.FindByTenantAndPrincipal(ctx, tenantID, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return domain.Decide(principal.Kind, nil, required)
		}
		return err
	}
	return domain.Decide(principal.Kind, m, required)
}

func (s *service) Get(ctx context.Context, tenantID, principalID snowflake.ID) (*domain.Membership, error) {
	return s.repo.FindByTenantAndPrincipal(ctx, tenantID, principalID)
}

func (s *service) EnsureClient(ctx context.Context, tenantID, principalID snowflake.ID) (*domain.Membership, error) {
	existing, err := s.repo.FindByTenantAndPrincipal(ctx, tenantID, principalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrMembershipNotFound) {
		return nil, err
	}

	m := &domain.Membership{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		PrincipalID: principalID,
		Role:        domain.RoleClient,
		Active:      true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		// Lost the race against a concurrent enroll; use the winner's row.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByTenantAndPrincipal(ctx, tenantID, principalID)
		}
		return nil, err
	}
	s.log.Info("membership created",
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.Int64("principal_id", principalID.Int64()),
		zap.String("role", string(domain.RoleClient)),
	)
	return m, nil
}

func (s *service) Grant(ctx context.Context, tenantID, principalID snowflake.ID, role domain.Role) (*domain.Membership, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindByTenantAndPrincipal(ctx, tenantID, principalID)
	if err == nil {
		existing.Role = role
		existing.Active = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrMembershipNotFound) {
		return nil, err
	}

	m := &domain.Membership{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		PrincipalID: principalID,
		Role:        role,
		Active:      true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.Grant(ctx, tenantID, principalID, role)
		}
		return nil, err
	}
	s.log.Info("membership granted",
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.Int64("principal_id", principalID.Int64()),
		zap.String("role", string(role)),
	)
	return m, nil
}

func (s *service) Revoke(ctx context.Context, tenantID, principalID snowflake.ID) error {
	m, err := s.repo.FindByTenantAndPrincipal(ctx, tenantID, principalID)
	if err != nil {
		return err
	}
	m.Active = false
	return s.repo.Update(ctx, m)
}

func (s *service) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]domain.Membership, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *service) ListByPrincipal(ctx context.Context, principalID snowflake.ID) ([]domain.Membership, error) {
	return s.repo.ListByPrincipal(ctx, principalID)
}
