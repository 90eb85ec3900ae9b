package email

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(func(log *zap.Logger) Sender {
		return NewLogSender(log)
	}),
)
