package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"github.com/techtech-dev-team/stranger-backoffice/internal/migration"
	"github.com/techtech-dev-team/stranger-backoffice/internal/observability"
	"github.com/techtech-dev-team/stranger-backoffice/internal/scheduler"
	"github.com/techtech-dev-team/stranger-backoffice/internal/server"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
