package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chairbook/chairbook/internal/signup"
)

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

// SignUp registers a new client under the shop in the path. The shop is
// resolved here directly because the caller has no session yet.
func (s *Server) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shop, err := s.tenantSvc.GetBySlug(c.Request.Context(), c.Param(shopParam))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !shop.Active {
		AbortWithError(c, ErrNotFound)
		return
	}

	result, err := s.signupSvc.SignUp(c.Request.Context(), signup.SignUpRequest{
		TenantID:    shop.ID,
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Phone:       strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Login.RawToken, result.Login.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{
		"principal": principalView(result.Principal),
		"role":      result.Membership.Role,
		"shop":      shop.Slug,
	})
}

// Enroll joins the authenticated principal to the shop as a client.
func (s *Server) Enroll(c *gin.Context) {
	principal := currentPrincipal(c)
	tenant := currentTenant(c)

	m, err := s.signupSvc.Enroll(c.Request.Context(), tenant.ID, principal.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": m.Role, "active": m.Active})
}
