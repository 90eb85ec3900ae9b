package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/availability/domain"
)

type templateRepo struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed weekly template repository.
func NewRepository(db *gorm.DB) domain.Repository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, t *domain.WeeklyTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *templateRepo) Find(ctx context.Context, tenantID, staffID snowflake.ID, weekStart string) (*domain.WeeklyTemplate, error) {
	var t domain.WeeklyTemplate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND staff_id = ? AND week_start = ?", tenantID, staffID, weekStart).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepo) Update(ctx context.Context, t *domain.WeeklyTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}
