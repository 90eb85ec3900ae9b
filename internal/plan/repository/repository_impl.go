package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/plan/domain"
)

type planRepo struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed plan repository.
func NewRepository(db *gorm.DB) domain.Repository {
	return &planRepo{db: db}
}

func (r *planRepo) CreatePlan(ctx context.Context, p *domain.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *planRepo) FindPlanByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Plan, error) {
	var p domain.Plan
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) ListPlans(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]domain.Plan, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}

	var out []domain.Plan
	err := q.Order("price_cents ASC").Find(&out).Error
	return out, err
}

func (r *planRepo) UpdatePlan(ctx context.Context, p *domain.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *planRepo) CreateSubscription(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *planRepo) FindSubscriptionByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *planRepo) FindActiveByClient(ctx context.Context, tenantID, clientID snowflake.ID) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ? AND status = ?", tenantID, clientID, domain.SubscriptionActive).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *planRepo) UpdateSubscription(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Save(s).Error
}
