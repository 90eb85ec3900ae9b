package plan

import (
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/plan/repository"
	"github.com/chairbook/chairbook/internal/plan/service"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
