package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/cmd/app/commands"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/app"
)

func getValueCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "put",
			Usage:     "Encrypt a value and store it on every configured provider",
			ArgsUsage: "<key> [value]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "sensitivity",
					Aliases: []string{"s"},
					Value:   "high",
					Usage:   "Sensitivity: low (direct), medium (key-encapsulation) or high (hybrid)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() < 1 {
					return cli.Exit("put requires a key", 1)
				}
				return withContainer(ctx, func(c *app.Container) error {
					vault, err := c.Vault()
					if err != nil {
						return err
					}
					return commands.RunPut(
						ctx,
						vault,
						c.Logger(),
						commands.DefaultIO(),
						cmd.Args().Get(0),
						cmd.Args().Get(1),
						cmd.String("sensitivity"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:      "get",
			Usage:     "Read and decrypt a stored value",
			ArgsUsage: "<key>",
			Flags:     []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() != 1 {
					return cli.Exit("get requires a key", 1)
				}
				return withContainer(ctx, func(c *app.Container) error {
					vault, err := c.Vault()
					if err != nil {
						return err
					}
					return commands.RunGet(
						ctx,
						vault,
						commands.DefaultIO().Writer,
						cmd.Args().Get(0),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:      "delete",
			Usage:     "Remove a stored value from every provider",
			ArgsUsage: "<key>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "secure",
					Value: false,
					Usage: "Overwrite the stored bytes before removing them",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() != 1 {
					return cli.Exit("delete requires a key", 1)
				}
				return withContainer(ctx, func(c *app.Container) error {
					vault, err := c.Vault()
					if err != nil {
						return err
					}
					return commands.RunDelete(
						ctx,
						vault,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.Args().Get(0),
						cmd.Bool("secure"),
					)
				})
			},
		},
		{
			Name:  "list",
			Usage: "List stored keys",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					vault, err := c.Vault()
					if err != nil {
						return err
					}
					return commands.RunList(ctx, vault, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
	}
}
