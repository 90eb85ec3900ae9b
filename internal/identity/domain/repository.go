package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, p *Principal) error
	FindByID(ctx context.Context, id snowflake.ID) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	UpdatePasswordHash(ctx context.Context, id snowflake.ID, hash string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Touch(ctx context.Context, id snowflake.ID) error
	Revoke(ctx context.Context, id snowflake.ID) error
	SetActiveTenant(ctx context.Context, id snowflake.ID, tenantID *int64) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, r *PasswordReset) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	MarkUsed(ctx context.Context, id snowflake.ID) error
}
