package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signatrust/cmd/app/commands"
	"github.com/allisson/signatrust/internal/app"
	"github.com/allisson/signatrust/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	serve := &cli.Command{
		Name:  "server",
		Usage: "Start the control plane, signing and metrics servers",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return commands.RunServer(ctx, version)
		},
	}

	migrate := &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withContainer(ctx, false, func(container *app.Container) error {
				cfg := container.Config()
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			})
		},
	}

	hashToken := &cli.Command{
		Name:  "hash-token",
		Usage: "Hash an admin token for ADMIN_TOKEN_HASH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "Token to hash (read from stdin when omitted)",
			},
			&cli.BoolFlag{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "Generate a random token and print it with its hash",
			},
			formatFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			container := app.NewContainer(config.Load())
			return commands.RunHashToken(
				container.TokenService(),
				commands.DefaultIO(),
				cmd.String("token"),
				cmd.Bool("generate"),
				cmd.String("format"),
			)
		},
	}

	printVersion := &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(context.Context, *cli.Command) error {
			_, err := fmt.Fprintln(commands.DefaultIO().Writer, version)
			return err
		},
	}

	return []*cli.Command{serve, migrate, hashToken, printVersion}
}
