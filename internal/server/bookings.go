package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	bookingdomain "github.com/chairbook/chairbook/internal/booking/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	"github.com/chairbook/chairbook/pkg/db/pagination"
)

type CreateBookingRequest struct {
	OfferingID string `json:"offering_id"`
	StaffID    string `json:"staff_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	Notes      string `json:"notes"`
}

// rejectionReason labels the refused-booking counter without leaking free
// text into the metric.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, bookingdomain.ErrSlotFull):
		return "slot_full"
	case errors.Is(err, bookingdomain.ErrSlotNotOffered):
		return "slot_not_offered"
	case errors.Is(err, bookingdomain.ErrPastDate):
		return "past_date"
	default:
		return "invalid"
	}
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	offeringID, err := snowflake.ParseString(req.OfferingID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	var staffID snowflake.ID
	if req.StaffID != "" {
		staffID, err = snowflake.ParseString(req.StaffID)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	tenant := currentTenant(c)
	principal := currentPrincipal(c)

	booking, err := s.bookingSvc.Create(c.Request.Context(), bookingdomain.CreateBookingRequest{
		TenantID:   tenant.ID,
		ClientID:   principal.ID,
		StaffID:    staffID,
		OfferingID: offeringID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		Notes:      req.Notes,
	})
	if err != nil {
		s.metrics.BookingsRejected.WithLabelValues(tenant.Slug, rejectionReason(err)).Inc()
		AbortWithError(c, err)
		return
	}

	s.metrics.BookingsCreated.WithLabelValues(tenant.Slug).Inc()
	c.JSON(http.StatusCreated, booking)
}

func (s *Server) ListOwnBookings(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	principal := currentPrincipal(c)

	resp, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListBookingsRequest{
		TenantID:   tenant.ID,
		ClientID:   principal.ID,
		Date:       c.Query("date"),
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CancelOwnBooking(c *gin.Context) {
	bookingID, err := snowflake.ParseString(c.Param("bookingId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	principal := currentPrincipal(c)

	booking, err := s.bookingSvc.CancelOwn(c.Request.Context(), tenant.ID, bookingID, principal.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (s *Server) ListBookings(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := bookingdomain.ListBookingsRequest{
		TenantID:   currentTenant(c).ID,
		Date:       c.Query("date"),
		Pagination: page,
	}
	for _, raw := range c.QueryArray("status") {
		status := bookingdomain.Status(raw)
		if !status.Valid() {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.Statuses = append(req.Statuses, status)
	}

	resp, err := s.bookingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOccupancy(c *gin.Context) {
	date := c.Query("date")
	start := c.Query("start")
	if date == "" || start == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)
	count, err := s.bookingSvc.Occupancy(c.Request.Context(), tenant.ID, date, start)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     date,
		"start":    start,
		"occupied": count,
		"capacity": tenant.Capacity(),
	})
}

func (s *Server) GetBooking(c *gin.Context) {
	bookingID, err := snowflake.ParseString(c.Param("bookingId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	booking, err := s.bookingSvc.GetByID(c.Request.Context(), currentTenant(c).ID, bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type TransitionBookingRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionBooking(c *gin.Context) {
	bookingID, err := snowflake.ParseString(c.Param("bookingId"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req TransitionBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	next := bookingdomain.Status(req.Status)
	if !next.Valid() {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant := currentTenant(c)

	// Cancelling on a client's behalf is an admin action; clients cancel
	// their own bookings through the cancel route.
	if next == bookingdomain.StatusCancelled {
		if err := s.membershipSvc.Check(c.Request.Context(), currentPrincipal(c), tenant.ID, membershipdomain.RoleAdmin); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	booking, err := s.bookingSvc.Transition(c.Request.Context(), tenant.ID, bookingID, next)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if booking.Status == bookingdomain.StatusCompleted {
		s.metrics.BookingsCompleted.WithLabelValues(tenant.Slug).Inc()
	}
	c.JSON(http.StatusOK, booking)
}
