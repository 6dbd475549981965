package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/stepup/cmd/app/commands"
	"github.com/allisson/stepup/internal/app"
	"github.com/allisson/stepup/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "listen",
			Usage: "Start the approval event listener",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunListen(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run approval store migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
