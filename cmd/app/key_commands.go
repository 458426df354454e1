package main

import (
	"cmp"
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signatrust/cmd/app/commands"
	"github.com/allisson/signatrust/internal/app"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-cluster-key",
			Usage: "Create the cluster key protecting data keys when none is active",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, true, func(container *app.Container) error {
					engine, err := container.EncryptionEngine()
					if err != nil {
						return err
					}
					return commands.RunCreateClusterKey(ctx, engine, container.Logger(), commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "rotate-cluster-key",
			Usage: "Create a new cluster key and make it active; data keys stored under the previous one stop decrypting",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, true, func(container *app.Container) error {
					engine, err := container.EncryptionEngine()
					if err != nil {
						return err
					}
					return commands.RunRotateClusterKey(ctx, engine, container.Logger(), commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "create-key",
			Usage: "Generate a new signing data key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique key name",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Key description",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Key owner email",
				},
				&cli.StringFlag{
					Name:     "key-type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Key type: 'openpgp' or 'x509'",
				},
				&cli.StringSliceFlag{
					Name:    "attribute",
					Aliases: []string{"a"},
					Usage:   "Generation attribute as key=value (repeatable)",
				},
				&cli.StringFlag{
					Name:  "create-at",
					Usage: "Validity start in RFC3339 (defaults to now)",
				},
				&cli.StringFlag{
					Name:  "expire-at",
					Usage: "Validity end in RFC3339 (defaults to one year from now)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				now := time.Now().UTC().Truncate(time.Second)
				params := commands.CreateKeyParams{
					Name:        cmd.String("name"),
					Description: cmd.String("description"),
					Email:       cmd.String("email"),
					KeyType:     cmd.String("key-type"),
					Attributes:  cmd.StringSlice("attribute"),
					CreateAt:    cmp.Or(cmd.String("create-at"), now.Format(time.RFC3339)),
					ExpireAt:    cmp.Or(cmd.String("expire-at"), now.AddDate(1, 0, 0).Format(time.RFC3339)),
				}

				return withContainer(ctx, true, func(container *app.Container) error {
					useCase, err := container.DataKeyUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateKey(
						ctx,
						useCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						params,
						cmd.String("format"),
					)
				})
			},
		},
	}
}
