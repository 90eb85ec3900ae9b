// Package server wires the HTTP surface: routing, auth middleware, tenant
// resolution and the JSON handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/chairbook/chairbook/internal/availability"
	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
	"github.com/chairbook/chairbook/internal/booking"
	bookingdomain "github.com/chairbook/chairbook/internal/booking/domain"
	"github.com/chairbook/chairbook/internal/catalog"
	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	"github.com/chairbook/chairbook/internal/config"
	"github.com/chairbook/chairbook/internal/identity"
	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	"github.com/chairbook/chairbook/internal/identity/session"
	"github.com/chairbook/chairbook/internal/membership"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	"github.com/chairbook/chairbook/internal/observability"
	"github.com/chairbook/chairbook/internal/plan"
	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
	"github.com/chairbook/chairbook/internal/providers/email"
	"github.com/chairbook/chairbook/internal/signup"
	"github.com/chairbook/chairbook/internal/tenant"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

var Module = fx.Module("http.server",
	observability.Module,
	session.Module,
	email.Module,
	identity.Module,
	tenant.Module,
	membership.Module,
	catalog.Module,
	availability.Module,
	plan.Module,
	booking.Module,
	signup.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.Tracing())
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(metrics *observability.Metrics) gin.HandlerFunc {
		handler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
		return gin.WrapH(handler)
	}(metrics))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	genID           *snowflake.Node
	sessions        *session.Manager
	metrics         *observability.Metrics
	identitySvc     identitydomain.Service
	tenantSvc       tenantdomain.Service
	membershipSvc   membershipdomain.Service
	catalogSvc      catalogdomain.Service
	availabilitySvc availabilitydomain.Service
	planSvc         plandomain.Service
	bookingSvc      bookingdomain.Service
	signupSvc       signup.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	GenID           *snowflake.Node
	Sessions        *session.Manager
	Metrics         *observability.Metrics
	IdentitySvc     identitydomain.Service
	TenantSvc       tenantdomain.Service
	MembershipSvc   membershipdomain.Service
	CatalogSvc      catalogdomain.Service
	AvailabilitySvc availabilitydomain.Service
	PlanSvc         plandomain.Service
	BookingSvc      bookingdomain.Service
	SignupSvc       signup.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		sessions:        p.Sessions,
		metrics:         p.Metrics,
		identitySvc:     p.IdentitySvc,
		tenantSvc:       p.TenantSvc,
		membershipSvc:   p.MembershipSvc,
		catalogSvc:      p.CatalogSvc,
		availabilitySvc: p.AvailabilitySvc,
		planSvc:         p.PlanSvc,
		bookingSvc:      p.BookingSvc,
		signupSvc:       p.SignupSvc,
	}

	s.registerAuthRoutes()
	s.registerPlatformRoutes()
	s.registerShopRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/forgot", s.Forgot)
	auth.POST("/reset", s.ResetPassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

// Platform routes are tenant management for the operator.
func (s *Server) registerPlatformRoutes() {
	admin := s.engine.Group("/api/v1/admin", s.AuthRequired(), s.RequireSuperAdmin())

	admin.POST("/shops", s.CreateShop)
	admin.GET("/shops", s.ListShops)
	admin.DELETE("/shops/:shop", s.DeactivateShop)
}

// Shop routes are scoped to one tenant, resolved from the path slug.
func (s *Server) registerShopRoutes() {
	api := s.engine.Group("/api/v1")

	// Signup is the only unauthenticated shop endpoint: a brand-new client
	// has no session yet.
	api.POST("/shops/:shop/signup", s.SignUp)

	shop := api.Group("/shops/:shop", s.AuthRequired(), s.TenantContext())

	shop.GET("", s.RequireRole(membershipdomain.RoleClient), s.GetShop)
	shop.PATCH("", s.RequireRole(membershipdomain.RoleAdmin), s.UpdateShop)
	shop.PATCH("/settings", s.RequireRole(membershipdomain.RoleAdmin), s.UpdateShopSettings)
	shop.POST("/enroll", s.Enroll)

	members := shop.Group("/members", s.RequireRole(membershipdomain.RoleAdmin))
	{
		members.GET("", s.ListMembers)
		members.PUT("/:principalId/role", s.SetMemberRole)
		members.DELETE("/:principalId", s.RevokeMember)
	}

	offerings := shop.Group("/offerings")
	{
		offerings.GET("", s.RequireRole(membershipdomain.RoleClient), s.ListOfferings)
		offerings.POST("", s.RequireRole(membershipdomain.RoleAdmin), s.CreateOffering)
		offerings.PATCH("/:offeringId", s.RequireRole(membershipdomain.RoleAdmin), s.UpdateOffering)
		offerings.DELETE("/:offeringId", s.RequireRole(membershipdomain.RoleAdmin), s.DeactivateOffering)
	}

	availabilityGroup := shop.Group("/availability")
	{
		availabilityGroup.GET("/slots", s.RequireRole(membershipdomain.RoleClient), s.GetSlots)
		availabilityGroup.GET("/week", s.RequireRole(membershipdomain.RoleStaff), s.GetWeek)
		availabilityGroup.PUT("/week", s.RequireRole(membershipdomain.RoleStaff), s.SetWeek)
		availabilityGroup.PUT("/day", s.RequireRole(membershipdomain.RoleStaff), s.SetDay)
	}

	bookings := shop.Group("/bookings")
	{
		bookings.POST("", s.RequireRole(membershipdomain.RoleClient), s.CreateBooking)
		bookings.GET("/mine", s.RequireRole(membershipdomain.RoleClient), s.ListOwnBookings)
		bookings.POST("/:bookingId/cancel", s.RequireRole(membershipdomain.RoleClient), s.CancelOwnBooking)
		bookings.GET("", s.RequireRole(membershipdomain.RoleStaff), s.ListBookings)
		bookings.GET("/occupancy", s.RequireRole(membershipdomain.RoleStaff), s.GetOccupancy)
		bookings.GET("/:bookingId", s.RequireRole(membershipdomain.RoleStaff), s.GetBooking)
		bookings.POST("/:bookingId/status", s.RequireRole(membershipdomain.RoleStaff), s.TransitionBooking)
	}

	plans := shop.Group("/plans")
	{
		plans.GET("", s.RequireRole(membershipdomain.RoleClient), s.ListPlans)
		plans.POST("", s.RequireRole(membershipdomain.RoleAdmin), s.CreatePlan)
		plans.DELETE("/:planId", s.RequireRole(membershipdomain.RoleAdmin), s.DeactivatePlan)
		plans.POST("/:planId/subscribe", s.RequireRole(membershipdomain.RoleClient), s.Subscribe)
	}

	subscriptions := shop.Group("/subscriptions")
	{
		subscriptions.GET("/mine", s.RequireRole(membershipdomain.RoleClient), s.GetOwnSubscription)
		subscriptions.POST("/:subscriptionId/renew", s.RequireRole(membershipdomain.RoleAdmin), s.RenewSubscription)
		subscriptions.POST("/:subscriptionId/cancel", s.RequireRole(membershipdomain.RoleAdmin), s.CancelSubscription)
	}
}
