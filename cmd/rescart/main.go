package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/cache"
	"github.com/smallbiznis/rescart/internal/clock"
	"github.com/smallbiznis/rescart/internal/config"
	"github.com/smallbiznis/rescart/internal/migration"
	"github.com/smallbiznis/rescart/internal/observability"
	"github.com/smallbiznis/rescart/internal/scheduler"
	"github.com/smallbiznis/rescart/internal/server"
	"github.com/smallbiznis/rescart/pkg/db"
	"github.com/smallbiznis/rescart/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		cache.Module,
		clock.Module,
		migration.Module,

		server.Module,
		scheduler.Module,
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
