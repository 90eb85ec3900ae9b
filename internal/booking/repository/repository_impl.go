package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/booking/domain"
	"github.com/chairbook/chairbook/pkg/db"
	"github.com/chairbook/chairbook/pkg/db/pagination"
)

type bookingRepo struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed booking repository.
func NewRepository(db *gorm.DB) domain.Repository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, tx *gorm.DB, b *domain.Booking) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *bookingRepo) FindByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Booking, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

func (r *bookingRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id snowflake.ID) (*domain.Booking, error) {
	return r.find(db.ForUpdate(tx.WithContext(ctx)), tenantID, id)
}

func (r *bookingRepo) find(q *gorm.DB, tenantID, id snowflake.ID) (*domain.Booking, error) {
	var b domain.Booking
	err := q.Where("tenant_id = ? AND id = ?", tenantID, id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) ActiveAtSlotForUpdate(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, date, startTime string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := db.ForUpdate(tx.WithContext(ctx)).
		Where("tenant_id = ? AND date = ? AND start_time = ?", tenantID, date, startTime).
		Where("status NOT IN ?", []domain.Status{domain.StatusCompleted, domain.StatusCancelled}).
		Order("slot_seq ASC").
		Find(&out).Error
	return out, err
}

func (r *bookingRepo) Update(ctx context.Context, tx *gorm.DB, b *domain.Booking) error {
	return tx.WithContext(ctx).Save(b).Error
}

func (r *bookingRepo) List(ctx context.Context, req domain.ListBookingsRequest) ([]*domain.Booking, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", req.TenantID)
	if req.ClientID != 0 {
		q = q.Where("client_id = ?", req.ClientID)
	}
	if req.Date != "" {
		q = q.Where("date = ?", req.Date)
	}
	if len(req.Statuses) > 0 {
		q = q.Where("status IN ?", req.Statuses)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.ID != "" {
			after, err := strconv.ParseInt(cursor.ID, 10, 64)
			if err != nil {
				return nil, err
			}
			q = q.Where("id > ?", after)
		}
	}

	size := req.PageSize
	if size <= 0 {
		size = 10
	}

	var out []*domain.Booking
	err := q.Order("id ASC").Limit(size + 1).Find(&out).Error
	return out, err
}

func (r *bookingRepo) CountActiveAtSlot(ctx context.Context, tenantID snowflake.ID, date, startTime string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("tenant_id = ? AND date = ? AND start_time = ?", tenantID, date, startTime).
		Where("status NOT IN ?", []domain.Status{domain.StatusCompleted, domain.StatusCancelled}).
		Count(&count).Error
	return int(count), err
}
