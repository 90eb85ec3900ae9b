package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chairbook/chairbook/internal/identity/domain"
	"github.com/chairbook/chairbook/internal/identity/password"
	"github.com/chairbook/chairbook/internal/providers/email"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	resetTokenBytes = 32
	resetTTL        = time.Hour

	minPasswordLength = 8
)

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	sessions domain.SessionRepository
	resets   domain.PasswordResetRepository
	sender   email.Sender
	genID    *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, sessions domain.SessionRepository, resets domain.PasswordResetRepository, sender email.Sender, genID *snowflake.Node) domain.Service {
	return &Service{
		log:      log.Named("identity.service"),
		repo:     repo,
		sessions: sessions,
		resets:   resets,
		sender:   sender,
		genID:    genID,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Principal, error) {
	addr, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByEmail(ctx, addr); err == nil {
		return nil, domain.ErrPrincipalExists
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = addr[:strings.Index(addr, "@")]
	}

	p := &domain.Principal{
		ID:           s.genID.Generate(),
		ExternalID:   uuid.NewString(),
		Kind:         domain.KindMember,
		DisplayName:  displayName,
		Email:        addr,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: &hashed,
		Active:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	addr, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	p, err := s.repo.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !p.Active || p.PasswordHash == nil || !password.Verify(req.Password, *p.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, tokenHash, err := newToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		PrincipalID:      p.ID,
		SessionTokenHash: tokenHash,
		UserAgent:        req.UserAgent,
		IPAddress:        req.IPAddress,
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		Principal: p,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.lookupSession(ctx, rawToken)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, session.ID)
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	session, err := s.lookupSession(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}
	_ = s.sessions.Touch(ctx, session.ID)
	return session, nil
}

func (s *Service) SetActiveTenant(ctx context.Context, sessionID snowflake.ID, tenantID *int64) error {
	return s.sessions.SetActiveTenant(ctx, sessionID, tenantID)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Principal, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, principalID snowflake.ID, current, updated string) error {
	if len(strings.TrimSpace(updated)) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	p, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		return err
	}
	if p.PasswordHash == nil || !password.Verify(current, *p.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	hashed, err := password.Hash(updated)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, p.ID, hashed)
}

func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	addr, err := normalizeEmail(emailAddr)
	if err != nil {
		return nil
	}

	p, err := s.repo.FindByEmail(ctx, addr)
	if err != nil {
		// Do not reveal whether the account exists.
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil
		}
		return err
	}

	rawToken, tokenHash, err := newToken(resetTokenBytes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	reset := &domain.PasswordReset{
		ID:          s.genID.Generate(),
		PrincipalID: p.ID,
		TokenHash:   tokenHash,
		ExpiresAt:   now.Add(resetTTL),
		CreatedAt:   now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return err
	}

	if err := s.sender.SendPasswordReset(ctx, p.Email, rawToken); err != nil {
		s.log.Warn("failed to dispatch password reset", zap.Error(err))
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	reset, err := s.resets.FindByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		return err
	}
	if reset.UsedAt != nil || time.Now().UTC().After(reset.ExpiresAt) {
		return domain.ErrInvalidResetToken
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, reset.PrincipalID, hashed); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, reset.ID)
}

func (s *Service) lookupSession(ctx context.Context, rawToken string) (*domain.Session, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.ErrInvalidSession
	}
	return s.sessions.FindByTokenHash(ctx, hashToken(rawToken))
}

func newToken(size int) (raw string, hash string, err error) {
	buf := make([]byte, size)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", errors.New("empty email")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
