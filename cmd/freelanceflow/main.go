package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freelanceflow/internal/client"
	"github.com/smallbiznis/freelanceflow/internal/clock"
	"github.com/smallbiznis/freelanceflow/internal/config"
	"github.com/smallbiznis/freelanceflow/internal/invoice"
	"github.com/smallbiznis/freelanceflow/internal/logger"
	"github.com/smallbiznis/freelanceflow/internal/migration"
	"github.com/smallbiznis/freelanceflow/internal/notify"
	"github.com/smallbiznis/freelanceflow/internal/observability"
	"github.com/smallbiznis/freelanceflow/internal/report"
	"github.com/smallbiznis/freelanceflow/internal/seed"
	"github.com/smallbiznis/freelanceflow/internal/server"
	"github.com/smallbiznis/freelanceflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		// Functional Domains
		client.Module,
		invoice.Module,
		report.Module,
		notify.Module,
		seed.Module,

		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
