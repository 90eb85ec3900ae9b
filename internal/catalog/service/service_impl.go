package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chairbook/chairbook/internal/catalog/domain"
)

// Durations outside this window are almost certainly data-entry mistakes.
const (
	minDurationMinutes = 5
	maxDurationMinutes = 8 * 60
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("catalog.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOfferingRequest) (*domain.Offering, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.TenantID == 0 {
		return nil, domain.ErrInvalidOffering
	}
	if req.PriceCents < 0 {
		return nil, domain.ErrInvalidOffering
	}
	if req.DurationMinutes < minDurationMinutes || req.DurationMinutes > maxDurationMinutes {
		return nil, domain.ErrInvalidOffering
	}

	now := time.Now().UTC()
	o := &domain.Offering{
		ID:              s.genID.Generate(),
		TenantID:        req.TenantID,
		ExternalID:      uuid.NewString(),
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
		DisplayOrder:    req.DisplayOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("offering created",
		zap.Int64("tenant_id", req.TenantID.Int64()),
		zap.String("name", name),
	)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Offering, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *service) List(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]domain.Offering, error) {
	return s.repo.List(ctx, tenantID, includeInactive)
}

func (s *service) Update(ctx context.Context, tenantID, id snowflake.ID, req domain.UpdateOfferingRequest) (*domain.Offering, error) {
	o, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidOffering
		}
		o.Name = name
	}
	if req.Description != nil {
		o.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, domain.ErrInvalidOffering
		}
		o.PriceCents = *req.PriceCents
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < minDurationMinutes || *req.DurationMinutes > maxDurationMinutes {
			return nil, domain.ErrInvalidOffering
		}
		o.DurationMinutes = *req.DurationMinutes
	}
	if req.DisplayOrder != nil {
		o.DisplayOrder = *req.DisplayOrder
	}
	if req.Active != nil {
		o.Active = *req.Active
	}

	o.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Deactivate(ctx context.Context, tenantID, id snowflake.ID) error {
	o, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	o.Active = false
	o.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, o)
}
