package cache

import (
	"strings"
	"time"

	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

const defaultTenantTTL = 30 * time.Second

// TenantResolverCache stores hot-path slug lookups for tenant resolution.
// Entries are short-lived and invalidated on rename or deactivation.
type TenantResolverCache interface {
	GetBySlug(slug string) (tenantdomain.Tenant, bool)
	SetBySlug(slug string, t tenantdomain.Tenant)
	Invalidate(slug string)
}

type tenantResolverCache struct {
	slugs Cache[string, tenantdomain.Tenant]
	ttl   time.Duration
}

// NewTenantResolverCache returns an in-memory cache for slug resolution.
func NewTenantResolverCache() TenantResolverCache {
	return &tenantResolverCache{
		slugs: NewTTLCache[string, tenantdomain.Tenant](),
		ttl:   defaultTenantTTL,
	}
}

func (c *tenantResolverCache) GetBySlug(slug string) (tenantdomain.Tenant, bool) {
	return c.slugs.Get(normalizeSlug(slug))
}

func (c *tenantResolverCache) SetBySlug(slug string, t tenantdomain.Tenant) {
	if t.ID == 0 {
		return
	}
	c.slugs.Set(normalizeSlug(slug), t, c.ttl)
}

func (c *tenantResolverCache) Invalidate(slug string) {
	c.slugs.Delete(normalizeSlug(slug))
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
