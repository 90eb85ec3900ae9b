package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound         = errors.New("plan_not_found")
	ErrInvalidPlan          = errors.New("invalid_plan")
	ErrPlanInactive         = errors.New("plan_inactive")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrAlreadySubscribed    = errors.New("already_subscribed")
	ErrPlanExhausted        = errors.New("plan_exhausted")
)

type CreatePlanRequest struct {
	TenantID       snowflake.ID
	Name           string
	PriceCents     int64
	VisitsPerCycle int
	CycleDays      int
	Benefits       []string
}

// Service manages plans and client subscriptions. Visit consumption runs
// inside the caller's transaction so a completed booking and its decrement
// commit or roll back together.
type Service interface {
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	GetPlan(ctx context.Context, tenantID, id snowflake.ID) (*Plan, error)
	ListPlans(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]Plan, error)
	DeactivatePlan(ctx context.Context, tenantID, id snowflake.ID) error

	// Subscribe starts a new cycle on the plan. A client holds at most one
	// active subscription per tenant.
	Subscribe(ctx context.Context, tenantID, clientID, planID snowflake.ID) (*Subscription, error)

	// Renew resets the remaining visits and rolls the cycle window forward.
	Renew(ctx context.Context, tenantID, subscriptionID snowflake.ID) (*Subscription, error)

	Cancel(ctx context.Context, tenantID, subscriptionID snowflake.ID) error

	// ActiveForClient returns the client's active subscription, or
	// ErrSubscriptionNotFound when they have none.
	ActiveForClient(ctx context.Context, tenantID, clientID snowflake.ID) (*Subscription, error)

	// ConsumeVisit decrements the active subscription's remaining visits by
	// one, inside tx. Clients without a subscription consume nothing and the
	// call is a no-op; a zero balance is left at zero.
	ConsumeVisit(ctx context.Context, tx *gorm.DB, tenantID, clientID snowflake.ID) error
}

type Repository interface {
	CreatePlan(ctx context.Context, p *Plan) error
	FindPlanByID(ctx context.Context, tenantID, id snowflake.ID) (*Plan, error)
	ListPlans(ctx context.Context, tenantID snowflake.ID, includeInactive bool) ([]Plan, error)
	UpdatePlan(ctx context.Context, p *Plan) error

	CreateSubscription(ctx context.Context, s *Subscription) error
	FindSubscriptionByID(ctx context.Context, tenantID, id snowflake.ID) (*Subscription, error)
	FindActiveByClient(ctx context.Context, tenantID, clientID snowflake.ID) (*Subscription, error)
	UpdateSubscription(ctx context.Context, s *Subscription) error
}
