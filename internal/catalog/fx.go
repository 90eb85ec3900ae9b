package catalog

import (
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/catalog/repository"
	"github.com/chairbook/chairbook/internal/catalog/service"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
