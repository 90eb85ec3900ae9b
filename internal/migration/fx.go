package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	availabilitydomain "github.com/chairbook/chairbook/internal/availability/domain"
	bookingdomain "github.com/chairbook/chairbook/internal/booking/domain"
	catalogdomain "github.com/chairbook/chairbook/internal/catalog/domain"
	"github.com/chairbook/chairbook/internal/config"
	identitydomain "github.com/chairbook/chairbook/internal/identity/domain"
	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	plandomain "github.com/chairbook/chairbook/internal/plan/domain"
	"github.com/chairbook/chairbook/internal/seed"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite installs are for local use; the model schema is
			// authoritative there.
			if err := conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&identitydomain.Principal{},
				&identitydomain.Session{},
				&identitydomain.PasswordReset{},
				&membershipdomain.Membership{},
				&catalogdomain.Offering{},
				&availabilitydomain.WeeklyTemplate{},
				&plandomain.Plan{},
				&plandomain.Subscription{},
				&bookingdomain.Booking{},
			); err != nil {
				return err
			}
		}

		if cfg.DefaultTenantID != 0 {
			if err := seed.EnsureDefaultTenantWithID(conn, cfg.DefaultTenantID); err != nil {
				return err
			}
		} else {
			if err := seed.EnsureDefaultTenant(conn); err != nil {
				return err
			}
		}
		if cfg.BootstrapAdmin {
			return seed.EnsureAdmin(conn)
		}
		return nil
	}),
)
