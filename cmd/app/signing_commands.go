package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signatrust/cmd/app/commands"
	"github.com/allisson/signatrust/internal/app"
	"github.com/allisson/signatrust/internal/config"
	signingGRPC "github.com/allisson/signatrust/internal/signing/grpc"
)

func getSigningCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sign",
			Usage: "Sign a file through the signing server",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "server",
					Aliases: []string{"s"},
					Value:   "localhost:8088",
					Usage:   "Signing server address",
				},
				&cli.StringFlag{
					Name:     "key-type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Key type: 'openpgp' or 'x509'",
				},
				&cli.StringFlag{
					Name:     "key-name",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Name of the data key",
				},
				&cli.StringFlag{
					Name:    "input",
					Aliases: []string{"i"},
					Value:   "-",
					Usage:   "File to sign ('-' for stdin)",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "-",
					Usage:   "Signature destination ('-' for stdout)",
				},
				&cli.StringSliceFlag{
					Name:  "option",
					Usage: "Sign option as key=value, e.g. detached=true (repeatable)",
				},
				&cli.IntFlag{
					Name:  "chunk-size",
					Value: signingGRPC.DefaultChunkSize,
					Usage: "Bytes per stream message",
				},
				&cli.BoolFlag{
					Name:  "raw",
					Usage: "Write the signature bytes instead of base64",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())

				client, err := signingGRPC.Dial(cmd.String("server"))
				if err != nil {
					return fmt.Errorf("failed to connect to signing server: %w", err)
				}
				defer func() { _ = client.Close() }()

				input, closeInput, err := openInput(cmd.String("input"))
				if err != nil {
					return err
				}
				defer closeInput()

				output, closeOutput, err := openOutput(cmd.String("output"))
				if err != nil {
					return err
				}
				defer closeOutput()

				return commands.RunSign(ctx, client, container.Logger(), input, output, commands.SignParams{
					KeyType:   cmd.String("key-type"),
					KeyName:   cmd.String("key-name"),
					Options:   cmd.StringSlice("option"),
					ChunkSize: int(cmd.Int("chunk-size")),
					Raw:       cmd.Bool("raw"),
				})
			},
		},
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return commands.DefaultIO().Reader, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return commands.DefaultIO().Writer, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
