// Package signup composes account registration with tenant enrollment so a
// new client lands in a shop with one call.
package signup

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
)

type SignUpRequest struct {
	TenantID    snowflake.ID
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

type SignUpResult struct {
	Principal  *identitydomain.Principal
	Membership *membershipdomain.Membership
	Login      *identitydomain.LoginResult
}

type Service interface {
	// SignUp registers a new account, enrolls it as a client of the tenant
	// and opens a session. An existing email is rejected; those users enroll
	// through Enroll after logging in.
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error)

	// Enroll gives an existing, authenticated principal a client membership
	// in the tenant. Idempotent.
	Enroll(ctx context.Context, tenantID, principalID snowflake.ID) (*membershipdomain.Membership, error)
}

type service struct {
	log         *zap.Logger
	identity    identitydomain.Service
	memberships membershipdomain.Service
}

func New(log *zap.Logger, identity identitydomain.Service, memberships membershipdomain.Service) Service {
	return &service{
		log:         log.Named("signup.service"),
		identity:    identity,
		memberships: memberships,
	}
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	principal, err := s.identity.Register(ctx, identitydomain.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		return nil, err
	}

	m, err := s.memberships.EnsureClient(ctx, req.TenantID, principal.ID)
	if err != nil {
		return nil, err
	}

	login, err := s.identity.Login(ctx, identitydomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	tenantID := req.TenantID.Int64()
	if err := s.identity.SetActiveTenant(ctx, login.SessionID, &tenantID); err != nil {
		return nil, err
	}

	s.log.Info("client signed up",
		zap.Int64("tenant_id", req.TenantID.Int64()),
		zap.Int64("principal_id", principal.ID.Int64()),
	)
	return &SignUpResult{Principal: principal, Membership: m, Login: login}, nil
}

func (s *service) Enroll(ctx context.Context, tenantID, principalID snowflake.ID) (*membershipdomain.Membership, error) {
	return s.memberships.EnsureClient(ctx, tenantID, principalID)
}

var Module = fx.Module("signup.service",
	fx.Provide(New),
)
