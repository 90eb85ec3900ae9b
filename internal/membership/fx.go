package membership

import (
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/membership/repository"
	"github.com/chairbook/chairbook/internal/membership/service"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
