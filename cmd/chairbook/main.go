package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/chairbook/chairbook/internal/clock"
	"github.com/chairbook/chairbook/internal/config"
	"github.com/chairbook/chairbook/internal/logger"
	"github.com/chairbook/chairbook/internal/migration"
	"github.com/chairbook/chairbook/internal/server"
	"github.com/chairbook/chairbook/pkg/db"
	"github.com/chairbook/chairbook/pkg/telemetry"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		telemetry.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
