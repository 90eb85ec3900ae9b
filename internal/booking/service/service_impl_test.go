package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
	"github.com/chairbook/chairbook/internal/booking/domain"
	"github.com/chairbook/chairbook/internal/booking/repository"
	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	"github.com/chairbook/chairbook/internal/clock"
	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
	planrepository "github.com/chairbook/chairbook/internal/plan/repository"
	planservice "github.com/chairbook/chairbook/internal/plan/service"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
	"github.com/chairbook/chairbook/pkg/db"
)

type tenantStub struct {
	capacity int
}

func (s *tenantStub) Create(ctx context.Context, req tenantdomain.CreateTenantRequest) (*tenantdomain.Tenant, error) {
	return nil, nil
}

func (s *tenantStub) GetByID(ctx context.Context, id snowflake.ID) (*tenantdomain.Tenant, error) {
	return &tenantdomain.Tenant{
		ID:     id,
		Active: true,
		Settings: map[string]any{
			tenantdomain.SettingSlotsPerTimeslot: s.capacity,
		},
	}, nil
}

func (s *tenantStub) GetBySlug(ctx context.Context, slug string) (*tenantdomain.Tenant, error) {
	return nil, tenantdomain.ErrTenantNotFound
}

func (s *tenantStub) List(ctx context.Context) ([]tenantdomain.Tenant, error) {
	return nil, nil
}

func (s *tenantStub) Rename(ctx context.Context, id snowflake.ID, name, newSlug string) (*tenantdomain.Tenant, error) {
	return nil, nil
}

func (s *tenantStub) Deactivate(ctx context.Context, id snowflake.ID) error {
	return nil
}

func (s *tenantStub) UpdateSettings(ctx context.Context, id snowflake.ID, settings map[string]any) (*tenantdomain.Tenant, error) {
	return nil, nil
}

func (s *tenantStub) Resolve(ctx context.Context, req tenantdomain.ResolveRequest) (*tenantdomain.Tenant, tenantdomain.ResolveSource, error) {
	return nil, tenantdomain.ResolvedNone, tenantdomain.ErrTenantNotFound
}

type catalogStub struct {
	duration int
	active   bool
}

func (s *catalogStub) Create(ctx context.Context, req catalogdomain.CreateOfferingRequest) (*catalogdomain.Offering, error) {
	return nil, nil
}

func (s *catalogStub) GetByID(ctx context.Context, tenantID, id snowflake.ID) (*catalogdomain.Offering, error) {
	return &catalogdomain.Offering{
		ID:              id,
		TenantID:        tenantID,
		Name:            "Cut",
		DurationMinutes: s.duration,
		Active:          s.active,
	}, nil
}

func (s *catalogStub) List(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]catalogdomain.Offering, error) {
	return nil, nil
}

func (s *catalogStub) Update(ctx context.Context, tenantID, id snowflake.ID, req catalogdomain.UpdateOfferingRequest) (*catalogdomain.Offering, error) {
	return nil, nil
}

func (s *catalogStub) Deactivate(ctx context.Context, tenantID, id snowflake.ID) error {
	return nil
}

type availabilityStub struct {
	slots []string
}

func (s *availabilityStub) GetWeek(ctx context.Context, tenantID, staffID snowflake.ID, date string) (*availabilitydomain.WeeklyTemplate, error) {
	return nil, nil
}

func (s *availabilityStub) SlotsFor(ctx context.Context, tenantID, staffID snowflake.ID, date string) ([]string, error) {
	return s.slots, nil
}

func (s *availabilityStub) SetDay(ctx context.Context, tenantID, staffID snowflake.ID, date string, day availabilitydomain.DaySchedule) (*availabilitydomain.WeeklyTemplate, error) {
	return nil, nil
}

func (s *availabilityStub) SetWeek(ctx context.Context, tenantID, staffID snowflake.ID, weekStart string, pattern availabilitydomain.WeekPattern) (*availabilitydomain.WeeklyTemplate, error) {
	return nil, nil
}

type bookingFixture struct {
	svc   domain.Service
	plans plandomain.Service
	node  *snowflake.Node
	conn  *gorm.DB
	clock *clock.FakeClock
	avail *availabilityStub
}

func setupBookingService(t *testing.T, capacity int) *bookingFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Booking{},
		&plandomain.Plan{},
		&plandomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	plans := planservice.New(zap.NewNop(), planrepository.NewRepository(conn), node)
	avail := &availabilityStub{slots: []string{"09:00", "10:00", "11:00"}}

	svc := New(ServiceParam{
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         repository.NewRepository(conn),
		Tenants:      &tenantStub{capacity: capacity},
		Catalog:      &catalogStub{duration: 30, active: true},
		Availability: avail,
		Plans:        plans,
	})

	return &bookingFixture{svc: svc, plans: plans, node: node, conn: conn, clock: fake, avail: avail}
}

func (f *bookingFixture) createRequest(tenantID, clientID snowflake.ID) domain.CreateBookingRequest {
	return domain.CreateBookingRequest{
		TenantID:   tenantID,
		ClientID:   clientID,
		OfferingID: f.node.Generate(),
		Date:       "2026-09-03",
		StartTime:  "10:00",
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, b.Status)
	assert.Equal(t, "10:30", b.EndTime)
	require.NotNil(t, b.SlotSeq)
	assert.Equal(t, 0, *b.SlotSeq)
}

func TestCreateBookingRejectsUnofferedSlot(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()

	req := f.createRequest(f.node.Generate(), f.node.Generate())
	req.StartTime = "13:00"

	_, err := f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrSlotNotOffered)
}

func TestCreateBookingRejectsPastSlot(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()

	req := f.createRequest(f.node.Generate(), f.node.Generate())
	req.Date = "2026-08-30"
	req.StartTime = "10:00"

	_, err := f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrPastDate)
}

func TestCreateBookingCapacityTwo(t *testing.T) {
	f := setupBookingService(t, 2)
	ctx := context.Background()
	tenantID := f.node.Generate()

	first, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)
	assert.Equal(t, 0, *first.SlotSeq)

	second, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)
	assert.Equal(t, 1, *second.SlotSeq)

	_, err = f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	assert.ErrorIs(t, err, domain.ErrSlotFull)
}

func TestCancelFreesOrdinalForReuse(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	first, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.ErrorIs(t, err, domain.ErrSlotFull)

	cancelled, err := f.svc.Transition(ctx, tenantID, first.ID, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Nil(t, cancelled.SlotSeq)

	retry, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)
	assert.Equal(t, 0, *retry.SlotSeq)

	// The cancelled row is kept for history.
	var count int64
	require.NoError(t, f.conn.Model(&domain.Booking{}).Where("tenant_id = ?", tenantID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateBookingConcurrentLastSeat(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won, lost := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, domain.ErrSlotFull):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 9, lost)

	occupancy, err := f.svc.Occupancy(ctx, tenantID, "2026-09-03", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 1, occupancy)
}

func TestScheduleChangeKeepsExistingBookings(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)

	// Closing the timeslot afterwards only affects new bookings.
	f.avail.slots = []string{}

	_, err = f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	assert.ErrorIs(t, err, domain.ErrSlotNotOffered)

	confirmed, err := f.svc.Transition(ctx, tenantID, b.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
}

func TestTransitionStateMachine(t *testing.T) {
	all := []domain.Status{
		domain.StatusScheduled,
		domain.StatusConfirmed,
		domain.StatusInService,
		domain.StatusCompleted,
		domain.StatusCancelled,
	}
	allowed := map[domain.Status][]domain.Status{
		domain.StatusScheduled: {domain.StatusConfirmed, domain.StatusCancelled},
		domain.StatusConfirmed: {domain.StatusInService, domain.StatusCancelled},
		domain.StatusInService: {domain.StatusCompleted, domain.StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, domain.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionRejectsSameStatus(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusScheduled)
	assert.ErrorIs(t, err, domain.ErrAlreadyInStatus)
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusCancelled)
	require.NoError(t, err)

	for _, next := range []domain.Status{domain.StatusScheduled, domain.StatusConfirmed, domain.StatusCompleted} {
		_, err = f.svc.Transition(ctx, tenantID, b.ID, next)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
}

func TestCompletionConsumesExactlyOneVisit(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()
	clientID := f.node.Generate()

	p, err := f.plans.CreatePlan(ctx, plandomain.CreatePlanRequest{
		TenantID:       tenantID,
		Name:           "Monthly",
		PriceCents:     9900,
		VisitsPerCycle: 4,
	})
	require.NoError(t, err)
	_, err = f.plans.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, clientID))
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusInService)
	require.NoError(t, err)
	done, err := f.svc.Transition(ctx, tenantID, b.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, done.SlotSeq)

	sub, err := f.plans.ActiveForClient(ctx, tenantID, clientID)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.RemainingVisits)

	// Replaying the completion from a stale screen must not spend another.
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrAlreadyInStatus)

	sub, err = f.plans.ActiveForClient(ctx, tenantID, clientID)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.RemainingVisits)
}

func TestExhaustedPlanRefusedAtCreation(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()
	clientID := f.node.Generate()

	p, err := f.plans.CreatePlan(ctx, plandomain.CreatePlanRequest{
		TenantID:       tenantID,
		Name:           "Single",
		PriceCents:     3000,
		VisitsPerCycle: 1,
	})
	require.NoError(t, err)
	_, err = f.plans.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, clientID))
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusInService)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, tenantID, b.ID, domain.StatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.createRequest(tenantID, clientID))
	assert.ErrorIs(t, err, plandomain.ErrPlanExhausted)
}

func TestCancelOwnRequiresOwner(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()
	owner := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, owner))
	require.NoError(t, err)

	_, err = f.svc.CancelOwn(ctx, tenantID, b.ID, f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	cancelled, err := f.svc.CancelOwn(ctx, tenantID, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
}

func TestBookingInvisibleAcrossTenants(t *testing.T) {
	f := setupBookingService(t, 1)
	ctx := context.Background()
	tenantID := f.node.Generate()

	b, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, f.node.Generate(), b.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestListBookingsPaginates(t *testing.T) {
	f := setupBookingService(t, 10)
	ctx := context.Background()
	tenantID := f.node.Generate()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, f.createRequest(tenantID, f.node.Generate()))
		require.NoError(t, err)
	}

	resp, err := f.svc.List(ctx, domain.ListBookingsRequest{TenantID: tenantID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 5)
	assert.False(t, resp.PageInfo.HasMore)

	resp, err = f.svc.List(ctx, func() domain.ListBookingsRequest {
		req := domain.ListBookingsRequest{TenantID: tenantID}
		req.PageSize = 2
		return req
	}())
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)
	assert.True(t, resp.PageInfo.HasMore)

	next, err := f.svc.List(ctx, func() domain.ListBookingsRequest {
		req := domain.ListBookingsRequest{TenantID: tenantID}
		req.PageSize = 10
		req.PageToken = resp.PageInfo.NextPageToken
		return req
	}())
	require.NoError(t, err)
	assert.Len(t, next.Bookings, 3)
	assert.False(t, next.PageInfo.HasMore)
}
