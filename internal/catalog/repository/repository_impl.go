package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/catalog/domain"
)

type offeringRepo struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed catalog repository.
func NewRepository(db *gorm.DB) domain.Repository {
	return &offeringRepo{db: db}
}

func (r *offeringRepo) Create(ctx context.Context, o *domain.Offering) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *offeringRepo) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Offering, error) {
	var o domain.Offering
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOfferingNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *offeringRepo) List(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]domain.Offering, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}

	var out []domain.Offering
	err := q.Order("display_order ASC, name ASC").Find(&out).Error
	return out, err
}

func (r *offeringRepo) Update(ctx context.Context, o *domain.Offering) error {
	return r.db.WithContext(ctx).Save(o).Error
}
