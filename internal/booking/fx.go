package booking

import (
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/booking/repository"
	"github.com/chairbook/chairbook/internal/booking/service"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.New),
)
