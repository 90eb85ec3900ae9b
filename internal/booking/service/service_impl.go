package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
	"github.com/chairbook/chairbook/internal/booking/domain"
	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	"github.com/chairbook/chairbook/internal/clock"
	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
	"github.com/chairbook/chairbook/pkg/db"
	"github.com/chairbook/chairbook/pkg/db/pagination"
)

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	Tenants      tenantdomain.Service
	Catalog      catalogdomain.Service
	Availability availabilitydomain.Service
	Plans        plandomain.Service
}

type service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	tenants      tenantdomain.Service
	catalog      catalogdomain.Service
	availability availabilitydomain.Service
	plans        plandomain.Service
}

func New(p ServiceParam) domain.Service {
	return &service{
		db:           p.DB,
		log:          p.Log.Named("booking.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		tenants:      p.Tenants,
		catalog:      p.Catalog,
		availability: p.Availability,
		plans:        p.Plans,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	if req.TenantID == 0 || req.ClientID == 0 || req.OfferingID == 0 {
		return nil, domain.ErrInvalidBooking
	}
	day, err := time.Parse(availabilitydomain.DateLayout, req.Date)
	if err != nil {
		return nil, availabilitydomain.ErrInvalidDate
	}
	start, err := time.Parse(availabilitydomain.TimeLayout, req.StartTime)
	if err != nil || start.Format(availabilitydomain.TimeLayout) != req.StartTime {
		return nil, availabilitydomain.ErrInvalidTimeSlot
	}

	slotAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
	if slotAt.Before(s.clock.Now()) {
		return nil, domain.ErrPastDate
	}

	offering, err := s.catalog.GetByID(ctx, req.TenantID, req.OfferingID)
	if err != nil {
		return nil, err
	}
	if !offering.Active {
		return nil, catalogdomain.ErrOfferingInactive
	}

	slots, err := s.availability.SlotsFor(ctx, req.TenantID, req.StaffID, req.Date)
	if err != nil {
		return nil, err
	}
	if !contains(slots, req.StartTime) {
		return nil, domain.ErrSlotNotOffered
	}

	// Clients holding a plan with nothing left are turned away up front
	// rather than at the chair.
	if sub, err := s.plans.ActiveForClient(ctx, req.TenantID, req.ClientID); err == nil {
		if sub.RemainingVisits <= 0 {
			return nil, plandomain.ErrPlanExhausted
		}
	} else if !errors.Is(err, plandomain.ErrSubscriptionNotFound) {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	capacity := tenant.Capacity()
	endTime := slotAt.Add(time.Duration(offering.DurationMinutes) * time.Minute).Format(availabilitydomain.TimeLayout)

	created, err := s.tryReserve(ctx, req, capacity, endTime)
	if err != nil && db.IsDuplicateKeyErr(err) {
		// Lost the ordinal race; one more look at the slot decides it.
		created, err = s.tryReserve(ctx, req, capacity, endTime)
		if err != nil && db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlotFull
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("tenant_id", req.TenantID.Int64()),
		zap.Int64("client_id", req.ClientID.Int64()),
		zap.String("date", req.Date),
		zap.String("start_time", req.StartTime),
		zap.Intp("slot_seq", created.SlotSeq),
	)
	return created, nil
}

// tryReserve claims the smallest free capacity ordinal inside one
// transaction. The unique slot index backs the in-transaction count, so two
// racing writers can never both commit the same ordinal.
func (s *service) tryReserve(ctx context.Context, req domain.CreateBookingRequest, capacity int, endTime string) (*domain.Booking, error) {
	var created *domain.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		active, err := s.repo.ActiveAtSlotForUpdate(ctx, tx, req.TenantID, req.Date, req.StartTime)
		if err != nil {
			return err
		}
		if len(active) >= capacity {
			return domain.ErrSlotFull
		}

		used := make(map[int]bool, len(active))
		for _, b := range active {
			if b.SlotSeq != nil {
				used[*b.SlotSeq] = true
			}
		}
		seq := -1
		for i := 0; i < capacity; i++ {
			if !used[i] {
				seq = i
				break
			}
		}
		if seq < 0 {
			return domain.ErrSlotFull
		}

		now := s.clock.Now()
		b := &domain.Booking{
			ID:         s.genID.Generate(),
			TenantID:   req.TenantID,
			ExternalID: uuid.NewString(),
			ClientID:   req.ClientID,
			StaffID:    req.StaffID,
			OfferingID: req.OfferingID,
			Date:       req.Date,
			StartTime:  req.StartTime,
			EndTime:    endTime,
			Status:     domain.StatusScheduled,
			SlotSeq:    &seq,
			Notes:      req.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Create(ctx, tx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Booking, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *service) Transition(ctx context.Context, tenantID, id snowflake.ID, next domain.Status) (*domain.Booking, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidTransition
	}

	var updated *domain.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if b.Status == next {
			return domain.ErrAlreadyInStatus
		}
		if !domain.CanTransition(b.Status, next) {
			return domain.ErrInvalidTransition
		}

		if next == domain.StatusCompleted {
			if err := s.plans.ConsumeVisit(ctx, tx, tenantID, b.ClientID); err != nil {
				return err
			}
		}
		if next.Terminal() {
			b.SlotSeq = nil
		}
		b.Status = next
		b.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking transitioned",
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.Int64("booking_id", id.Int64()),
		zap.String("status", string(next)),
	)
	return updated, nil
}

func (s *service) CancelOwn(ctx context.Context, tenantID, id, clientID snowflake.ID) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if b.ClientID != clientID {
			return domain.ErrNotOwner
		}
		if b.Status == domain.StatusCancelled {
			return domain.ErrAlreadyInStatus
		}
		if !domain.CanTransition(b.Status, domain.StatusCancelled) {
			return domain.ErrInvalidTransition
		}

		b.SlotSeq = nil
		b.Status = domain.StatusCancelled
		b.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) List(ctx context.Context, req domain.ListBookingsRequest) (*domain.ListBookingsResponse, error) {
	if req.PageSize <= 0 {
		req.PageSize = 10
	}

	rows, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, int32(req.PageSize), func(b *domain.Booking) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: b.ID.String()})
		return token
	})
	if len(rows) > req.PageSize {
		rows = rows[:req.PageSize]
	}

	return &domain.ListBookingsResponse{Bookings: rows, PageInfo: pageInfo}, nil
}

func (s *service) Occupancy(ctx context.Context, tenantID snowflake.ID, date, startTime string) (int, error) {
	return s.repo.CountActiveAtSlot(ctx, tenantID, date, startTime)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
