package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/plan/domain"
	"github.com/chairbook/chairbook/pkg/db"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("plan.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.TenantID == 0 {
		return nil, domain.ErrInvalidPlan
	}
	if req.PriceCents < 0 || req.VisitsPerCycle < 1 {
		return nil, domain.ErrInvalidPlan
	}
	cycleDays := req.CycleDays
	if cycleDays == 0 {
		cycleDays = 30
	}
	if cycleDays < 1 {
		return nil, domain.ErrInvalidPlan
	}

	var benefits datatypes.JSON
	if len(req.Benefits) > 0 {
		raw, err := json.Marshal(req.Benefits)
		if err != nil {
			return nil, domain.ErrInvalidPlan
		}
		benefits = datatypes.JSON(raw)
	}

	now := time.Now().UTC()
	p := &domain.Plan{
		ID:             s.genID.Generate(),
		TenantID:       req.TenantID,
		ExternalID:     uuid.NewString(),
		Name:           name,
		PriceCents:     req.PriceCents,
		VisitsPerCycle: req.VisitsPerCycle,
		CycleDays:      cycleDays,
		Benefits:       benefits,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetPlan(ctx context.Context, tenantID, id snowflake.ID) (*domain.Plan, error) {
	return s.repo.FindPlanByID(ctx, tenantID, id)
}

func (s *service) ListPlans(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]domain.Plan, error) {
	return s.repo.ListPlans(ctx, tenantID, includeInactive)
}

func (s *service) DeactivatePlan(ctx context.Context, tenantID, id snowflake.ID) error {
	p, err := s.repo.FindPlanByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
	return s.repo.UpdatePlan(ctx, p)
}

func (s *service) Subscribe(ctx context.Context, tenantID, clientID, planID snowflake.ID) (*domain.Subscription, error) {
	p, err := s.repo.FindPlanByID(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.ErrPlanInactive
	}

	if _, err := s.repo.FindActiveByClient(ctx, tenantID, clientID); err == nil {
		return nil, domain.ErrAlreadySubscribed
	} else if !errors.Is(err, domain.ErrSubscriptionNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		ClientID:        clientID,
		PlanID:          planID,
		Status:          domain.SubscriptionActive,
		RemainingVisits: p.VisitsPerCycle,
		CycleStart:      now,
		CycleEnd:        now.AddDate(0, 0, p.CycleDays),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("subscription started",
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.Int64("client_id", clientID.Int64()),
		zap.String("plan", p.Name),
	)
	return sub, nil
}

func (s *service) Renew(ctx context.Context, tenantID, subscriptionID snowflake.ID) (*domain.Subscription, error) {
	sub, err := s.repo.FindSubscriptionByID(ctx, tenantID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCancelled {
		return nil, domain.ErrSubscriptionNotFound
	}
	p, err := s.repo.FindPlanByID(ctx, tenantID, sub.PlanID)
	if err != nil {
		return nil, err
	}

	// Renewal revives a lapsed cycle.
	now := time.Now().UTC()
	sub.Status = domain.SubscriptionActive
	sub.RemainingVisits = p.VisitsPerCycle
	sub.CycleStart = now
	sub.CycleEnd = now.AddDate(0, 0, p.CycleDays)
	sub.UpdatedAt = now
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) Cancel(ctx context.Context, tenantID, subscriptionID snowflake.ID) error {
	sub, err := s.repo.FindSubscriptionByID(ctx, tenantID, subscriptionID)
	if err != nil {
		return err
	}
	sub.Status = domain.SubscriptionCancelled
	sub.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateSubscription(ctx, sub)
}

func (s *service) ActiveForClient(ctx context.Context, tenantID, clientID snowflake.ID) (*domain.Subscription, error) {
	sub, err := s.repo.FindActiveByClient(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	// Expiry is applied lazily on read.
	if time.Now().UTC().After(sub.CycleEnd) {
		sub.Status = domain.SubscriptionExpired
		sub.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

// ConsumeVisit runs inside the caller's transaction. The row is locked so
// two completions cannot both spend the last visit.
func (s *service) ConsumeVisit(ctx context.Context, tx *gorm.DB, tenantID, clientID snowflake.ID) error {
	var sub domain.Subscription
	err := db.ForUpdate(tx.WithContext(ctx)).
		Where("tenant_id = ? AND client_id = ? AND status = ?", tenantID, clientID, domain.SubscriptionActive).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if sub.RemainingVisits <= 0 || time.Now().UTC().After(sub.CycleEnd) {
		return nil
	}
	sub.RemainingVisits--
	sub.UpdatedAt = time.Now().UTC()
	return tx.WithContext(ctx).Save(&sub).Error
}
