package availability

import (
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/availability/repository"
	"github.com/chairbook/chairbook/internal/availability/service"
)

var Module = fx.Module("availability.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
