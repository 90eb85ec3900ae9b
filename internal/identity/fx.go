package identity

import (
	"github.com/chairbook/chairbook/internal/identity/repository"
	"github.com/chairbook/chairbook/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(repository.NewPasswordResetRepository),
	fx.Provide(service.New),
)
