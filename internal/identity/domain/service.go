package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Principal, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	SetActiveTenant(ctx context.Context, sessionID snowflake.ID, tenantID *int64) error
	GetByID(ctx context.Context, id snowflake.ID) (*Principal, error)
	ChangePassword(ctx context.Context, principalID snowflake.ID, current, updated string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	Principal *Principal
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrPrincipalExists    = errors.New("principal_exists")
	ErrPrincipalNotFound  = errors.New("principal_not_found")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
)
