package server

import (
	"github.com/gin-gonic/gin"

	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
	"github.com/chairbook/chairbook/internal/tenantctx"
)

const (
	contextPrincipalKey = "principal"
	contextSessionKey   = "session"
	contextTenantKey    = "tenant"

	// shopParam is the path segment carrying the tenant slug.
	shopParam = "shop"
	// shopQuery is the fallback query parameter for endpoints outside the
	// shop-scoped route tree.
	shopQuery = "shop"
)

// AuthRequired authenticates the session cookie and loads the principal.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.identitySvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		principal, err := s.identitySvc.GetByID(c.Request.Context(), session.PrincipalID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !principal.Active {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextSessionKey, session)
		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

// TenantContext resolves the acting shop: the path slug wins, then the
// session's sticky hint, then the query parameter. Resolving by path writes
// the hint back so the next hint-based request lands on the same shop.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := tenantdomain.ResolveRequest{
			PathSlug:  c.Param(shopParam),
			QuerySlug: c.Query(shopQuery),
		}
		session := currentSession(c)
		if session != nil && session.ActiveTenantID != nil {
			req.SessionTenantID = *session.ActiveTenantID
		}

		tenant, source, err := s.tenantSvc.Resolve(c.Request.Context(), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if source == tenantdomain.ResolvedByPath && session != nil {
			hint := tenant.ID.Int64()
			if session.ActiveTenantID == nil || *session.ActiveTenantID != hint {
				if err := s.identitySvc.SetActiveTenant(c.Request.Context(), session.ID, &hint); err == nil {
					session.ActiveTenantID = &hint
				}
			}
		}

		c.Set(contextTenantKey, tenant)
		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenant.ID.Int64()))
		c.Next()
	}
}

// RequireRole gates the route on the principal's membership in the resolved
// shop. Super admins pass without a membership row.
func (s *Server) RequireRole(required membershipdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := currentPrincipal(c)
		tenant := currentTenant(c)
		if principal == nil || tenant == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.membershipSvc.Check(c.Request.Context(), principal, tenant.ID, required); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin gates platform-level routes.
func (s *Server) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := currentPrincipal(c)
		if principal == nil || !principal.IsSuperAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *identitydomain.Principal {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*identitydomain.Principal)
	return principal
}

func currentSession(c *gin.Context) *identitydomain.Session {
	v, ok := c.Get(contextSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*identitydomain.Session)
	return session
}

func currentTenant(c *gin.Context) *tenantdomain.Tenant {
	v, ok := c.Get(contextTenantKey)
	if !ok {
		return nil
	}
	tenant, _ := v.(*tenantdomain.Tenant)
	return tenant
}
