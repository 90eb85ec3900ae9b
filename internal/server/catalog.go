package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
)

func (s *Server) ListOfferings(c *gin.Context) {
	tenant := currentTenant(c)

	// Only staff and admins see deactivated offerings.
	includeInactive := false
	if c.Query("include_inactive") == "true" {
		principal := currentPrincipal(c)
		if err := s.membershipSvc.Check(c.Request.Context(), principal, tenant.ID, membershipdomain.RoleStaff); err == nil {
			includeInactive = true
		}
	}

	offerings, err := s.catalogSvc.List(c.Request.Context(), tenant.ID, includeInactive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offerings": offerings})
}

type CreateOfferingRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	DisplayOrder    int    `json:"display_order"`
}

func (s *Server) CreateOffering(c *gin.Context) {
	var req CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	offering, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateOfferingRequest{
		TenantID:        tenant.ID,
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offering)
}

type UpdateOfferingRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	PriceCents      *int64  `json:"price_cents"`
	DurationMinutes *int    `json:"duration_minutes"`
	DisplayOrder    *int    `json:"display_order"`
	Active          *bool   `json:"active"`
}

func (s *Server) UpdateOffering(c *gin.Context) {
	offeringID, err := snowflake.ParseString(c.Param("offeringId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	offering, err := s.catalogSvc.Update(c.Request.Context(), tenant.ID, offeringID, catalogdomain.UpdateOfferingRequest{
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		DisplayOrder:    req.DisplayOrder,
		Active:          req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, offering)
}

func (s *Server) DeactivateOffering(c *gin.Context) {
	offeringID, err := snowflake.ParseString(c.Param("offeringId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	if err := s.catalogSvc.Deactivate(c.Request.Context(), tenant.ID, offeringID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
