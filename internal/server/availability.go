package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
)

// staffIDFromQuery parses the optional staff_id parameter; zero addresses
// the tenant-wide template.
func staffIDFromQuery(c *gin.Context) (snowflake.ID, bool) {
	raw := c.Query("staff_id")
	if raw == "" {
		return 0, true
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Server) GetSlots(c *gin.Context) {
	staffID, ok := staffIDFromQuery(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	date := c.Query("date")
	slots, err := s.availabilitySvc.SlotsFor(c.Request.Context(), tenant.ID, staffID, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (s *Server) GetWeek(c *gin.Context) {
	staffID, ok := staffIDFromQuery(c)
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	week, err := s.availabilitySvc.GetWeek(c.Request.Context(), tenant.ID, staffID, c.Query("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

type SetWeekRequest struct {
	WeekStart string                         `json:"week_start"`
	StaffID   string                         `json:"staff_id"`
	Days      availabilitydomain.WeekPattern `json:"days"`
}

func (s *Server) SetWeek(c *gin.Context) {
	var req SetWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var staffID snowflake.ID
	if req.StaffID != "" {
		id, err := snowflake.ParseString(req.StaffID)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		staffID = id
	}

	tenant := currentTenant(c)
	week, err := s.availabilitySvc.SetWeek(c.Request.Context(), tenant.ID, staffID, req.WeekStart, req.Days)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

type SetDayRequest struct {
	Date    string                         `json:"date"`
	StaffID string                         `json:"staff_id"`
	Day     availabilitydomain.DaySchedule `json:"day"`
}

func (s *Server) SetDay(c *gin.Context) {
	var req SetDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var staffID snowflake.ID
	if req.StaffID != "" {
		id, err := snowflake.ParseString(req.StaffID)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		staffID = id
	}

	tenant := currentTenant(c)
	week, err := s.availabilitySvc.SetDay(c.Request.Context(), tenant.ID, staffID, req.Date, req.Day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}
