package tenant

import (
	"github.com/chairbook/chairbook/internal/cache"
	"github.com/chairbook/chairbook/internal/tenant/repository"
	"github.com/chairbook/chairbook/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(cache.NewTenantResolverCache),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
