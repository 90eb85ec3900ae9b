package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
)

type MemberView struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

func memberView(m *membershipdomain.Membership) MemberView {
	return MemberView{
		PrincipalID: m.PrincipalID.String(),
		Role:        string(m.Role),
		Active:      m.Active,
	}
}

func (s *Server) ListMembers(c *gin.Context) {
	tenant := currentTenant(c)

	members, err := s.membershipSvc.ListByTenant(c.Request.Context(), tenant.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]MemberView, 0, len(members))
	for i := range members {
		views = append(views, memberView(&members[i]))
	}
	c.JSON(http.StatusOK, gin.H{"members": views})
}

type SetMemberRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) SetMemberRole(c *gin.Context) {
	principalID, err := snowflake.ParseString(c.Param("principalId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	m, err := s.membershipSvc.Grant(c.Request.Context(), tenant.ID, principalID, membershipdomain.Role(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberView(m))
}

func (s *Server) RevokeMember(c *gin.Context) {
	principalID, err := snowflake.ParseString(c.Param("principalId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	if err := s.membershipSvc.Revoke(c.Request.Context(), tenant.ID, principalID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
