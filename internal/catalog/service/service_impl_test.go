package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chairbook/chairbook/internal/catalog/domain"
	"github.com/chairbook/chairbook/internal/catalog/repository"
	"github.com/chairbook/chairbook/pkg/db"
)

func setupCatalogService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Offering{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(zap.NewNop(), repository.NewRepository(conn), node), node
}

func TestCreateOfferingValidation(t *testing.T) {
	svc, node := setupCatalogService(t)
	ctx := context.Background()
	tenantID := node.Generate()

	_, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "  ", PriceCents: 100, DurationMinutes: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidOffering)

	_, err = svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "Cut", PriceCents: -1, DurationMinutes: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidOffering)

	_, err = svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "Cut", PriceCents: 3000, DurationMinutes: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidOffering)

	created, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "Cut", PriceCents: 3000, DurationMinutes: 30})
	require.NoError(t, err)
	assert.True(t, created.Active)
}

func TestListScopedToTenant(t *testing.T) {
	svc, node := setupCatalogService(t)
	ctx := context.Background()

	tenantA := node.Generate()
	tenantB := node.Generate()

	_, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantA, Name: "Cut", PriceCents: 3000, DurationMinutes: 30})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantB, Name: "Shave", PriceCents: 2000, DurationMinutes: 20})
	require.NoError(t, err)

	listA, err := svc.List(ctx, tenantA, false)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "Cut", listA[0].Name)
}

func TestGetByIDRequiresOwningTenant(t *testing.T) {
	svc, node := setupCatalogService(t)
	ctx := context.Background()

	tenantA := node.Generate()
	created, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantA, Name: "Cut", PriceCents: 3000, DurationMinutes: 30})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, node.Generate(), created.ID)
	assert.ErrorIs(t, err, domain.ErrOfferingNotFound)
}

func TestDeactivateHidesFromDefaultList(t *testing.T) {
	svc, node := setupCatalogService(t)
	ctx := context.Background()
	tenantID := node.Generate()

	created, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "Cut", PriceCents: 3000, DurationMinutes: 30})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, tenantID, created.ID))

	visible, err := svc.List(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(ctx, tenantID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateOfferingPartial(t *testing.T) {
	svc, node := setupCatalogService(t)
	ctx := context.Background()
	tenantID := node.Generate()

	created, err := svc.Create(ctx, domain.CreateOfferingRequest{TenantID: tenantID, Name: "Cut", PriceCents: 3000, DurationMinutes: 30})
	require.NoError(t, err)

	price := int64(3500)
	updated, err := svc.Update(ctx, tenantID, created.ID, domain.UpdateOfferingRequest{PriceCents: &price})
	require.NoError(t, err)
	assert.EqualValues(t, 3500, updated.PriceCents)
	assert.Equal(t, "Cut", updated.Name)
	assert.Equal(t, 30, updated.DurationMinutes)
}
