// Package seed bootstraps the records a fresh install needs: the default
// shop and the platform admin account.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	"github.com/chairbook/chairbook/internal/identity/password"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

const (
	defaultTenantName  = "Main"
	defaultTenantSlug  = "main"
	defaultAdminEmail  = "admin@chairbook.local"
	defaultAdminName   = "Chairbook Admin"
	defaultAdminSecret = "admin"
)

// EnsureDefaultTenant seeds the default shop so startup never lands on an
// empty database.
func EnsureDefaultTenant(db *gorm.DB) error {
	return ensureDefaultTenantWithID(db, 0)
}

// EnsureDefaultTenantWithID seeds the default shop under a fixed id, for
// installs that pin the id through configuration.
func EnsureDefaultTenantWithID(db *gorm.DB, id int64) error {
	return ensureDefaultTenantWithID(db, id)
}

func ensureDefaultTenantWithID(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureTenantTx(ctx, tx, node, id)
		return err
	})
}

// EnsureAdmin seeds the bootstrap super-admin account for self-hosted
// installs. The password is meant to be changed on first login.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ensureAdminTx(ctx, tx, node)
	})
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, id int64) (*tenantdomain.Tenant, error) {
	var existing tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", defaultTenantSlug).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tenantID := snowflake.ID(id)
	if tenantID == 0 {
		tenantID = node.Generate()
	}
	now := time.Now().UTC()
	t := &tenantdomain.Tenant{
		ID:         tenantID,
		ExternalID: uuid.NewString(),
		Name:       defaultTenantName,
		Slug:       defaultTenantSlug,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	email := strings.ToLower(defaultAdminEmail)

	var existing identitydomain.Principal
	err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(defaultAdminSecret)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &identitydomain.Principal{
		ID:           node.Generate(),
		ExternalID:   uuid.NewString(),
		Kind:         identitydomain.KindSuperAdmin,
		DisplayName:  defaultAdminName,
		Email:        email,
		PasswordHash: &hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(admin).Error
}
