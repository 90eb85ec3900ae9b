package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/plan/domain"
	"github.com/chairbook/chairbook/internal/plan/repository"
	"github.com/chairbook/chairbook/pkg/db"
)

func setupPlanService(t *testing.T) (domain.Service, *snowflake.Node, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Plan{}, &domain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(zap.NewNop(), repository.NewRepository(conn), node), node, conn
}

func createPlan(t *testing.T, svc domain.Service, tenantID snowflake.ID, visits int) *domain.Plan {
	t.Helper()
	p, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
		TenantID:       tenantID,
		Name:           "Monthly Cuts",
		PriceCents:     9900,
		VisitsPerCycle: visits,
	})
	require.NoError(t, err)
	return p
}

func TestCreatePlanValidation(t *testing.T) {
	svc, node, _ := setupPlanService(t)
	ctx := context.Background()
	tenantID := node.Generate()

	_, err := svc.CreatePlan(ctx, domain.CreatePlanRequest{TenantID: tenantID, Name: "", VisitsPerCycle: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)

	_, err = svc.CreatePlan(ctx, domain.CreatePlanRequest{TenantID: tenantID, Name: "Cuts", VisitsPerCycle: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)

	p, err := svc.CreatePlan(ctx, domain.CreatePlanRequest{TenantID: tenantID, Name: "Cuts", PriceCents: 5000, VisitsPerCycle: 4})
	require.NoError(t, err)
	assert.Equal(t, 30, p.CycleDays)
}

func TestSubscribeOneActivePerClient(t *testing.T) {
	svc, node, _ := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	clientID := node.Generate()
	p := createPlan(t, svc, tenantID, 4)

	sub, err := svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.RemainingVisits)

	_, err = svc.Subscribe(ctx, tenantID, clientID, p.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	// Cancelling frees the client to subscribe again.
	require.NoError(t, svc.Cancel(ctx, tenantID, sub.ID))
	_, err = svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)
}

func TestSubscribeRejectsInactivePlan(t *testing.T) {
	svc, node, _ := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	p := createPlan(t, svc, tenantID, 4)
	require.NoError(t, svc.DeactivatePlan(ctx, tenantID, p.ID))

	_, err := svc.Subscribe(ctx, tenantID, node.Generate(), p.ID)
	assert.ErrorIs(t, err, domain.ErrPlanInactive)
}

func TestConsumeVisitDecrementsOnce(t *testing.T) {
	svc, node, conn := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	clientID := node.Generate()
	p := createPlan(t, svc, tenantID, 2)
	_, err := svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeVisit(ctx, tx, tenantID, clientID)
	}))

	sub, err := svc.ActiveForClient(ctx, tenantID, clientID)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.RemainingVisits)
}

func TestConsumeVisitStopsAtZero(t *testing.T) {
	svc, node, conn := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	clientID := node.Generate()
	p := createPlan(t, svc, tenantID, 1)
	_, err := svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
			return svc.ConsumeVisit(ctx, tx, tenantID, clientID)
		}))
	}

	sub, err := svc.ActiveForClient(ctx, tenantID, clientID)
	require.NoError(t, err)
	assert.Equal(t, 0, sub.RemainingVisits)
}

func TestConsumeVisitWithoutSubscriptionIsNoOp(t *testing.T) {
	svc, node, conn := setupPlanService(t)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeVisit(context.Background(), tx, node.Generate(), node.Generate())
	}))
}

func TestRenewResetsCycle(t *testing.T) {
	svc, node, conn := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	clientID := node.Generate()
	p := createPlan(t, svc, tenantID, 4)
	sub, err := svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeVisit(ctx, tx, tenantID, clientID)
	}))

	renewed, err := svc.Renew(ctx, tenantID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, renewed.RemainingVisits)
}

func TestLapsedSubscriptionExpiresOnReadAndRenewRevives(t *testing.T) {
	svc, node, conn := setupPlanService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	clientID := node.Generate()
	p := createPlan(t, svc, tenantID, 4)
	sub, err := svc.Subscribe(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)

	// Push the cycle window into the past.
	require.NoError(t, conn.Model(&domain.Subscription{}).
		Where("id = ?", sub.ID).
		Update("cycle_end", time.Now().UTC().Add(-time.Hour)).Error)

	// A lapsed cycle never spends visits, even before the status flips.
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeVisit(ctx, tx, tenantID, clientID)
	}))
	var stored domain.Subscription
	require.NoError(t, conn.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, 4, stored.RemainingVisits)

	_, err = svc.ActiveForClient(ctx, tenantID, clientID)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	require.NoError(t, conn.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, domain.SubscriptionExpired, stored.Status)

	renewed, err := svc.Renew(ctx, tenantID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, renewed.Status)
	assert.Equal(t, 4, renewed.RemainingVisits)
	assert.True(t, renewed.CycleEnd.After(time.Now().UTC()))
}
