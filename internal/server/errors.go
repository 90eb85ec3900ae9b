package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
	bookingdomain "github.com/chairbook/chairbook/internal/booking/domain"
	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware renders the last handler error as a uniform JSON
// body. A non-member denial gets the same status and body as an unresolved
// shop slug, so probing /shops/{slug} cannot tell an existing shop from a
// missing one.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: "validation error",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidCredentials),
		errors.Is(err, identitydomain.ErrInvalidSession),
		errors.Is(err, identitydomain.ErrSessionExpired),
		errors.Is(err, identitydomain.ErrSessionRevoked),
		errors.Is(err, identitydomain.ErrInvalidResetToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, membershipdomain.ErrInsufficientRole),
		errors.Is(err, bookingdomain.ErrNotOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidSlug),
		errors.Is(err, tenantdomain.ErrInvalidCapacity),
		errors.Is(err, catalogdomain.ErrInvalidOffering),
		errors.Is(err, catalogdomain.ErrOfferingInactive),
		errors.Is(err, availabilitydomain.ErrInvalidDate),
		errors.Is(err, availabilitydomain.ErrInvalidTimeSlot),
		errors.Is(err, availabilitydomain.ErrNotWeekStart),
		errors.Is(err, availabilitydomain.ErrUnknownDay),
		errors.Is(err, plandomain.ErrInvalidPlan),
		errors.Is(err, plandomain.ErrPlanInactive),
		errors.Is(err, membershipdomain.ErrInvalidRole),
		errors.Is(err, bookingdomain.ErrInvalidBooking),
		errors.Is(err, bookingdomain.ErrPastDate),
		errors.Is(err, bookingdomain.ErrSlotNotOffered),
		errors.Is(err, identitydomain.ErrWeakPassword):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, identitydomain.ErrPrincipalExists),
		errors.Is(err, tenantdomain.ErrSlugTaken),
		errors.Is(err, tenantdomain.ErrHasOpenBookings),
		errors.Is(err, plandomain.ErrAlreadySubscribed),
		errors.Is(err, plandomain.ErrPlanExhausted),
		errors.Is(err, bookingdomain.ErrSlotFull),
		errors.Is(err, bookingdomain.ErrInvalidTransition),
		errors.Is(err, bookingdomain.ErrAlreadyInStatus):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrTenantNotFound),
		// A non-member is told the shop does not exist. Insufficient role
		// stays 403: that caller already holds a membership.
		errors.Is(err, membershipdomain.ErrNotMember),
		errors.Is(err, identitydomain.ErrPrincipalNotFound),
		errors.Is(err, membershipdomain.ErrMembershipNotFound),
		errors.Is(err, catalogdomain.ErrOfferingNotFound),
		errors.Is(err, availabilitydomain.ErrTemplateNotFound),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, plandomain.ErrSubscriptionNotFound),
		errors.Is(err, bookingdomain.ErrBookingNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
