package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chairbook/chairbook/internal/cache"
	"github.com/chairbook/chairbook/internal/tenant/domain"
	"github.com/chairbook/chairbook/internal/tenant/repository"
	"github.com/chairbook/chairbook/pkg/db"
)

func setupTenantService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Tenant{}))
	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY,
		tenant_id INTEGER NOT NULL,
		status TEXT NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(zap.NewNop(), repository.NewRepository(conn), cache.NewTenantResolverCache(), node)
	return svc, conn
}

func TestCreateSlugsFromName(t *testing.T) {
	svc, _ := setupTenantService(t)

	created, err := svc.Create(context.Background(), domain.CreateTenantRequest{Name: "Fade Factory"})
	require.NoError(t, err)
	assert.Equal(t, "fade-factory", created.Slug)
	assert.True(t, created.Active)
	assert.Equal(t, domain.DefaultCapacity, created.Capacity())
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Main", Slug: "main"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateTenantRequest{Name: "Main Two", Slug: "main"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestCreateRejectsBadCapacity(t *testing.T) {
	svc, _ := setupTenantService(t)

	_, err := svc.Create(context.Background(), domain.CreateTenantRequest{
		Name:     "Busy Shop",
		Settings: map[string]any{domain.SettingSlotsPerTimeslot: 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCapacity)
}

func TestResolvePathWinsOverSessionAndQuery(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	pathTenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Path Shop"})
	require.NoError(t, err)
	sessionTenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Session Shop"})
	require.NoError(t, err)
	queryTenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Query Shop"})
	require.NoError(t, err)

	resolved, source, err := svc.Resolve(ctx, domain.ResolveRequest{
		PathSlug:        pathTenant.Slug,
		SessionTenantID: sessionTenant.ID.Int64(),
		QuerySlug:       queryTenant.Slug,
	})
	require.NoError(t, err)
	assert.Equal(t, pathTenant.ID, resolved.ID)
	assert.Equal(t, domain.ResolvedByPath, source)
}

func TestResolveFallsBackToSessionThenQuery(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	sessionTenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Session Shop"})
	require.NoError(t, err)
	queryTenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Query Shop"})
	require.NoError(t, err)

	resolved, source, err := svc.Resolve(ctx, domain.ResolveRequest{
		SessionTenantID: sessionTenant.ID.Int64(),
		QuerySlug:       queryTenant.Slug,
	})
	require.NoError(t, err)
	assert.Equal(t, sessionTenant.ID, resolved.ID)
	assert.Equal(t, domain.ResolvedBySession, source)

	resolved, source, err = svc.Resolve(ctx, domain.ResolveRequest{QuerySlug: queryTenant.Slug})
	require.NoError(t, err)
	assert.Equal(t, queryTenant.ID, resolved.ID)
	assert.Equal(t, domain.ResolvedByQuery, source)
}

func TestResolveSkipsInactiveSessionHint(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	stale, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Closed Shop"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, stale.ID))

	fallback, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Open Shop"})
	require.NoError(t, err)

	resolved, source, err := svc.Resolve(ctx, domain.ResolveRequest{
		SessionTenantID: stale.ID.Int64(),
		QuerySlug:       fallback.Slug,
	})
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, resolved.ID)
	assert.Equal(t, domain.ResolvedByQuery, source)
}

func TestResolveAllMiss(t *testing.T) {
	svc, _ := setupTenantService(t)

	_, source, err := svc.Resolve(context.Background(), domain.ResolveRequest{})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Equal(t, domain.ResolvedNone, source)
}

func TestRenameInvalidatesOldSlug(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Old Name", Slug: "old-name"})
	require.NoError(t, err)

	// Warm the resolver cache with the old slug.
	_, _, err = svc.Resolve(ctx, domain.ResolveRequest{PathSlug: "old-name"})
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, created.ID, "New Name", "new-name")
	require.NoError(t, err)
	assert.Equal(t, "new-name", renamed.Slug)

	_, _, err = svc.Resolve(ctx, domain.ResolveRequest{PathSlug: "old-name"})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)

	resolved, _, err := svc.Resolve(ctx, domain.ResolveRequest{PathSlug: "new-name"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
}

func TestDeactivateRefusesWithOpenBookings(t *testing.T) {
	svc, conn := setupTenantService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Busy Shop"})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(
		`INSERT INTO bookings (id, tenant_id, status) VALUES (1, ?, 'scheduled')`,
		created.ID.Int64(),
	).Error)

	assert.ErrorIs(t, svc.Deactivate(ctx, created.ID), domain.ErrHasOpenBookings)

	require.NoError(t, conn.Exec(`UPDATE bookings SET status = 'completed'`).Error)
	require.NoError(t, svc.Deactivate(ctx, created.ID))
}

func TestUpdateSettingsMergesAndValidates(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateTenantRequest{
		Name:     "Shop",
		Settings: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(ctx, created.ID, map[string]any{domain.SettingSlotsPerTimeslot: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Capacity())
	assert.Equal(t, "dark", updated.Settings["theme"])

	_, err = svc.UpdateSettings(ctx, created.ID, map[string]any{domain.SettingSlotsPerTimeslot: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidCapacity)
}
