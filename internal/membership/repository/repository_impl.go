package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/membership/domain"
)

type membershipRepo struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed membership repository.
func NewRepository(db *gorm.DB) domain.Repository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *membershipRepo) FindByTenantAndPrincipal(ctx context.Context, tenantID, principalID snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND principal_id = ?", tenantID, principalID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) Update(ctx context.Context, m *domain.Membership) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *membershipRepo) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]domain.Membership, error) {
	var out []domain.Membership
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *membershipRepo) ListByPrincipal(ctx context.Context, principalID snowflake.ID) ([]domain.Membership, error) {
	var out []domain.Membership
	err := r.db.WithContext(ctx).
		Where("principal_id = ? AND active = ?", principalID, true).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
