package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/cmd/app/commands"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/app"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/config"
	cryptoService "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate or verify the KMS key that wraps persisted root keys",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Existing KMS key URI to verify (gcpkms://, awskms://, azurekeyvault://, hashivault://). Empty generates a local base64key:// key",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterKey(
					ctx,
					cryptoService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "init-keys",
			Usage: "Create the first root key version",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "force-reset",
					Value: false,
					Usage: "Erase every existing version first. Values encrypted under them become unreadable",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					keyManager, err := c.KeyManager()
					if err != nil {
						return err
					}
					return commands.RunInitKeys(
						ctx,
						keyManager,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.Bool("force-reset"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "rotate-keys",
			Usage: "Replace the current root key version",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					keyManager, err := c.KeyManager()
					if err != nil {
						return err
					}
					return commands.RunRotateKeys(
						ctx,
						keyManager,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "key-status",
			Usage: "Show root key versions and the rotation schedule",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					keyManager, err := c.KeyManager()
					if err != nil {
						return err
					}
					return commands.RunKeyStatus(keyManager, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "purge-keys",
			Usage: "Erase superseded root key versions past their retention grace",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					keyManager, err := c.KeyManager()
					if err != nil {
						return err
					}
					return commands.RunPurgeKeys(
						ctx,
						keyManager,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
	}
}

// withContainer builds a container from the environment and runs fn with it.
func withContainer(ctx context.Context, fn func(c *app.Container) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}
