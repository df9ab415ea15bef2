package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/printops/printserver/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTPS server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunMigrations()
			},
		},
		{
			Name:  "gen-cert",
			Usage: "Generate a self-signed TLS certificate for development",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "cert",
					Value: "certs/server.crt",
					Usage: "Output path for the certificate (PEM)",
				},
				&cli.StringFlag{
					Name:  "key",
					Value: "certs/server.key",
					Usage: "Output path for the private key (PEM)",
				},
				&cli.StringFlag{
					Name:  "hosts",
					Value: "localhost,127.0.0.1",
					Usage: "Comma-separated hostnames and IPs for the certificate",
				},
				&cli.IntFlag{
					Name:  "days",
					Value: 365,
					Usage: "Certificate validity in days",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenCert(
					commands.DefaultIO().Writer,
					cmd.String("cert"),
					cmd.String("key"),
					cmd.String("hosts"),
					int(cmd.Int("days")),
				)
			},
		},
	}
}
