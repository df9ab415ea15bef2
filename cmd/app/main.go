// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "printserver",
		Usage:    "Credential-gated print management service",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
