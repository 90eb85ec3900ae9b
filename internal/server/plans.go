package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	tenant := currentTenant(c)

	plans, err := s.planSvc.ListPlans(c.Request.Context(), tenant.ID, false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type CreatePlanRequest struct {
	Name           string   `json:"name"`
	PriceCents     int64    `json:"price_cents"`
	VisitsPerCycle int      `json:"visits_per_cycle"`
	CycleDays      int      `json:"cycle_days"`
	Benefits       []string `json:"benefits"`
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	plan, err := s.planSvc.CreatePlan(c.Request.Context(), plandomain.CreatePlanRequest{
		TenantID:       tenant.ID,
		Name:           req.Name,
		PriceCents:     req.PriceCents,
		VisitsPerCycle: req.VisitsPerCycle,
		CycleDays:      req.CycleDays,
		Benefits:       req.Benefits,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) DeactivatePlan(c *gin.Context) {
	planID, err := snowflake.ParseString(c.Param("planId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	if err := s.planSvc.DeactivatePlan(c.Request.Context(), tenant.ID, planID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (s *Server) Subscribe(c *gin.Context) {
	planID, err := snowflake.ParseString(c.Param("planId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	principal := currentPrincipal(c)

	sub, err := s.planSvc.Subscribe(c.Request.Context(), tenant.ID, principal.ID, planID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) GetOwnSubscription(c *gin.Context) {
	tenant := currentTenant(c)
	principal := currentPrincipal(c)

	sub, err := s.planSvc.ActiveForClient(c.Request.Context(), tenant.ID, principal.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) RenewSubscription(c *gin.Context) {
	subID, err := snowflake.ParseString(c.Param("subscriptionId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	sub, err := s.planSvc.Renew(c.Request.Context(), tenant.ID, subID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) CancelSubscription(c *gin.Context) {
	subID, err := snowflake.ParseString(c.Param("subscriptionId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	if err := s.planSvc.Cancel(c.Request.Context(), tenant.ID, subID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
