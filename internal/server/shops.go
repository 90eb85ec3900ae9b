package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

type ShopView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Active   bool   `json:"active"`
	Capacity int    `json:"capacity"`
}

func shopView(t *tenantdomain.Tenant) ShopView {
	return ShopView{
		ID:       t.ID.String(),
		Name:     t.Name,
		Slug:     t.Slug,
		Active:   t.Active,
		Capacity: t.Capacity(),
	}
}

type CreateShopRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Settings map[string]any `json:"settings"`
}

func (s *Server) CreateShop(c *gin.Context) {
	var req CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.tenantSvc.Create(c.Request.Context(), tenantdomain.CreateTenantRequest{
		Name:     req.Name,
		Slug:     req.Slug,
		Settings: req.Settings,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shopView(created))
}

func (s *Server) ListShops(c *gin.Context) {
	shops, err := s.tenantSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]ShopView, 0, len(shops))
	for i := range shops {
		views = append(views, shopView(&shops[i]))
	}
	c.JSON(http.StatusOK, gin.H{"shops": views})
}

// DeactivateShop takes the slug in the path to match the shop route shape.
func (s *Server) DeactivateShop(c *gin.Context) {
	shop, err := s.tenantSvc.GetBySlug(c.Request.Context(), c.Param(shopParam))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.tenantSvc.Deactivate(c.Request.Context(), shop.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (s *Server) GetShop(c *gin.Context) {
	c.JSON(http.StatusOK, shopView(currentTenant(c)))
}

type UpdateShopRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (s *Server) UpdateShop(c *gin.Context) {
	var req UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	renamed, err := s.tenantSvc.Rename(c.Request.Context(), tenant.ID, req.Name, req.Slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shopView(renamed))
}

func (s *Server) UpdateShopSettings(c *gin.Context) {
	var settings map[string]any
	if err := c.ShouldBindJSON(&settings); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	updated, err := s.tenantSvc.UpdateSettings(c.Request.Context(), tenant.ID, settings)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shopView(updated))
}
