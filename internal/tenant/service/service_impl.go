package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chairbook/chairbook/internal/cache"
	"github.com/chairbook/chairbook/internal/tenant/domain"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	cache cache.TenantResolverCache
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, resolver cache.TenantResolverCache, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("tenant.service"),
		repo:  repo,
		cache: resolver,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateTenantRequest) (*domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	tenantSlug := strings.TrimSpace(req.Slug)
	if tenantSlug == "" {
		tenantSlug = slug.Make(name)
	}
	if !slug.IsSlug(tenantSlug) {
		return nil, domain.ErrInvalidSlug
	}

	if _, err := s.repo.FindBySlug(ctx, tenantSlug); err == nil {
		return nil, domain.ErrSlugTaken
	} else if !errors.Is(err, domain.ErrTenantNotFound) {
		return nil, err
	}

	settings, err := validateSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Tenant{
		ID:         s.genID.Generate(),
		ExternalID: uuid.NewString(),
		Name:       name,
		Slug:       tenantSlug,
		Active:     true,
		Settings:   settings,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (*domain.Tenant, error) {
	return s.repo.FindBySlug(ctx, strings.TrimSpace(slugValue))
}

func (s *service) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.List(ctx)
}

// Rename is the only path that may change a slug; uniqueness is re-validated
// and the resolver cache dropped for both old and new values.
func (s *service) Rename(ctx context.Context, id snowflake.ID, name, newSlug string) (*domain.Tenant, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		t.Name = trimmed
	}

	if trimmed := strings.TrimSpace(newSlug); trimmed != "" && trimmed != t.Slug {
		if !slug.IsSlug(trimmed) {
			return nil, domain.ErrInvalidSlug
		}
		if existing, err := s.repo.FindBySlug(ctx, trimmed); err == nil && existing.ID != t.ID {
			return nil, domain.ErrSlugTaken
		} else if err != nil && !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, err
		}
		s.cache.Invalidate(t.Slug)
		t.Slug = trimmed
	}

	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(t.Slug)
	return t, nil
}

// Deactivate soft-deletes; tenants with open bookings are refused and rows
// are never hard-deleted.
func (s *service) Deactivate(ctx context.Context, id snowflake.ID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	open, err := s.repo.OpenBookingCount(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrHasOpenBookings
	}

	t.Active = false
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	s.cache.Invalidate(t.Slug)
	return nil
}

func (s *service) UpdateSettings(ctx context.Context, id snowflake.ID, settings map[string]any) (*domain.Tenant, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validated, err := validateSettings(settings)
	if err != nil {
		return nil, err
	}
	if t.Settings == nil {
		t.Settings = datatypes.JSONMap{}
	}
	for key, value := range validated {
		t.Settings[key] = value
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(t.Slug)
	return t, nil
}

func (s *service) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.Tenant, domain.ResolveSource, error) {
	if pathSlug := strings.TrimSpace(req.PathSlug); pathSlug != "" {
		t, err := s.resolveSlug(ctx, pathSlug)
		if err == nil {
			return t, domain.ResolvedByPath, nil
		}
		if !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.ResolvedNone, err
		}
	}

	if req.SessionTenantID != 0 {
		t, err := s.repo.FindByID(ctx, snowflake.ID(req.SessionTenantID))
		if err == nil && t.Active {
			return t, domain.ResolvedBySession, nil
		}
		if err != nil && !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.ResolvedNone, err
		}
	}

	if querySlug := strings.TrimSpace(req.QuerySlug); querySlug != "" {
		t, err := s.resolveSlug(ctx, querySlug)
		if err == nil {
			return t, domain.ResolvedByQuery, nil
		}
		if !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, domain.ResolvedNone, err
		}
	}

	return nil, domain.ResolvedNone, domain.ErrTenantNotFound
}

func (s *service) resolveSlug(ctx context.Context, slugValue string) (*domain.Tenant, error) {
	if cached, ok := s.cache.GetBySlug(slugValue); ok {
		if !cached.Active {
			return nil, domain.ErrTenantNotFound
		}
		t := cached
		return &t, nil
	}

	t, err := s.repo.FindBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, domain.ErrTenantNotFound
	}
	s.cache.SetBySlug(slugValue, *t)
	return t, nil
}

func validateSettings(settings map[string]any) (datatypes.JSONMap, error) {
	out := datatypes.JSONMap{}
	for key, value := range settings {
		if key == domain.SettingSlotsPerTimeslot {
			capacity, ok := asPositiveInt(value)
			if !ok {
				return nil, domain.ErrInvalidCapacity
			}
			out[key] = capacity
			continue
		}
		out[key] = value
	}
	return out, nil
}

func asPositiveInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, v >= 1
	case int64:
		return int(v), v >= 1
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), v >= 1
	default:
		return 0, false
	}
}
