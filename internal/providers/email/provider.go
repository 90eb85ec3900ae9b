// Package email delivers account mail. Delivery is out of scope for the
// booking core, so the default sender only logs; a real transport plugs in
// behind the same interface.
package email

import (
	"context"

	"go.uber.org/zap"
)

type Sender interface {
	SendPasswordReset(ctx context.Context, to string, token string) error
}

type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("providers.email")}
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to string, token string) error {
	_ = ctx
	s.log.Info("password reset issued", zap.String("to", to))
	return nil
}

type NoOpSender struct{}

func (NoOpSender) SendPasswordReset(ctx context.Context, to string, token string) error {
	return nil
}
