package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/cmd/app/commands"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/app"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and the key rotation scheduler",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create the tables used by the sql storage provider",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
