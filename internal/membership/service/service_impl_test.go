package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	"github.com/chairbook/chairbook/internal/membership/domain"
	"github.com/chairbook/chairbook/internal/membership/repository"
	"github.com/chairbook/chairbook/pkg/db"
)

func setupMembershipService(t *testing.T) (domain.Service, *snowflake.Node, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Membership{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(repository.NewRepository(conn), node, zap.NewNop()), node, conn
}

func member(node *snowflake.Node) *identitydomain.Principal {
	return &identitydomain.Principal{
		ID:     node.Generate(),
		Kind:   identitydomain.KindMember,
		Active: true,
	}
}

func TestCheckDeniesAcrossTenants(t *testing.T) {
	svc, node, _ := setupMembershipService(t)
	ctx := context.Background()

	tenantA := node.Generate()
	tenantB := node.Generate()
	p := member(node)

	_, err := svc.Grant(ctx, tenantA, p.ID, domain.RoleStaff)
	require.NoError(t, err)

	assert.NoError(t, svc.Check(ctx, p, tenantA, domain.RoleStaff))
	assert.ErrorIs(t, svc.Check(ctx, p, tenantB, domain.RoleAdmin), domain.ErrNotMember)
}

func TestCheckSuperAdminWithoutRow(t *testing.T) {
	svc, node, _ := setupMembershipService(t)

	p := &identitydomain.Principal{
		ID:     node.Generate(),
		Kind:   identitydomain.KindSuperAdmin,
		Active: true,
	}

	assert.NoError(t, svc.Check(context.Background(), p, node.Generate(), domain.RoleAdmin))
}

func TestCheckInsufficientRole(t *testing.T) {
	svc, node, _ := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	p := member(node)

	_, err := svc.Grant(ctx, tenantID, p.ID, domain.RoleClient)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Check(ctx, p, tenantID, domain.RoleAdmin), domain.ErrInsufficientRole)
}

func TestEnsureClientIsIdempotent(t *testing.T) {
	svc, node, conn := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	principalID := node.Generate()

	first, err := svc.EnsureClient(ctx, tenantID, principalID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, first.Role)

	second, err := svc.EnsureClient(ctx, tenantID, principalID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&domain.Membership{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureClientNeverDowngrades(t *testing.T) {
	svc, node, _ := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	principalID := node.Generate()

	_, err := svc.Grant(ctx, tenantID, principalID, domain.RoleAdmin)
	require.NoError(t, err)

	m, err := svc.EnsureClient(ctx, tenantID, principalID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, m.Role)
}

func TestEnsureClientConcurrent(t *testing.T) {
	svc, node, conn := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	principalID := node.Generate()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureClient(ctx, tenantID, principalID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, conn.Model(&domain.Membership{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrantUpdatesExistingRow(t *testing.T) {
	svc, node, conn := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	principalID := node.Generate()

	first, err := svc.Grant(ctx, tenantID, principalID, domain.RoleClient)
	require.NoError(t, err)

	second, err := svc.Grant(ctx, tenantID, principalID, domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleStaff, second.Role)

	var count int64
	require.NoError(t, conn.Model(&domain.Membership{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	svc, node, _ := setupMembershipService(t)

	_, err := svc.Grant(context.Background(), node.Generate(), node.Generate(), domain.Role("owner"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRevokeBlocksAccess(t *testing.T) {
	svc, node, _ := setupMembershipService(t)
	ctx := context.Background()

	tenantID := node.Generate()
	p := member(node)

	_, err := svc.Grant(ctx, tenantID, p.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, tenantID, p.ID))

	assert.ErrorIs(t, svc.Check(ctx, p, tenantID, domain.RoleClient), domain.ErrNotMember)
}
