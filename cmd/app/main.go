// Package main provides the entry point for the signatrust server and its CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signatrust/internal/app"
	"github.com/allisson/signatrust/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "signatrust",
		Usage:   "Code and package signing service",
		Version: version,
		Commands: slices.Concat(
			getSystemCommands(version),
			getKeyCommands(),
			getSigningCommands(),
		),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// withContainer loads the configuration, optionally validates it, and runs fn against a
// container that is shut down afterwards.
func withContainer(ctx context.Context, validate bool, fn func(*app.Container) error) error {
	cfg := config.Load()
	if validate {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(container)
}
