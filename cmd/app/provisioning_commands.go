package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/printops/printserver/cmd/app/commands"
	"github.com/printops/printserver/internal/app"
	"github.com/printops/printserver/internal/config"
)

func getProvisioningCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Provision a user with a hashed secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username to provision",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Secret for the user (omit to read from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userRepo, err := container.UserRepository()
				if err != nil {
					return err
				}

				verifier, err := container.SecretVerifier()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userRepo,
					verifier,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("username"),
					cmd.String("secret"),
				)
			},
		},
		{
			Name:  "grant",
			Usage: "Add operations to a user's grant set",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username to grant operations to",
				},
				&cli.StringFlag{
					Name:     "operations",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Comma-separated operation names (e.g. print,queue)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				grantRepo, err := container.GrantRepository()
				if err != nil {
					return err
				}

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}

				return commands.RunGrant(
					ctx,
					grantRepo,
					txManager,
					container.Logger(),
					cmd.String("username"),
					cmd.String("operations"),
				)
			},
		},
		{
			Name:  "revoke",
			Usage: "Remove operations from a user's grant set",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username to revoke operations from",
				},
				&cli.StringFlag{
					Name:     "operations",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Comma-separated operation names (e.g. print,queue)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				grantRepo, err := container.GrantRepository()
				if err != nil {
					return err
				}

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}

				return commands.RunRevoke(
					ctx,
					grantRepo,
					txManager,
					container.Logger(),
					cmd.String("username"),
					cmd.String("operations"),
				)
			},
		},
	}
}
