package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// StreamSigner streams content to the signing server.
type StreamSigner interface {
	SignStream(
		ctx context.Context,
		keyType, keyName string,
		options map[string]string,
		content io.Reader,
		chunkSize int,
	) ([]byte, error)
}

// SignParams holds the sign flags.
type SignParams struct {
	KeyType   string
	KeyName   string
	Options   []string
	ChunkSize int
	// Raw writes the signature bytes instead of base64.
	Raw bool
}

// RunSign streams content to the signing server and writes the signature base64 encoded,
// or as is when Raw is set.
func RunSign(
	ctx context.Context,
	signer StreamSigner,
	logger *slog.Logger,
	content io.Reader,
	writer io.Writer,
	params SignParams,
) error {
	options, err := parseAttributes(params.Options)
	if err != nil {
		return err
	}
	if params.KeyType == "" || params.KeyName == "" {
		return fmt.Errorf("key type and key name are required")
	}

	signature, err := signer.SignStream(
		ctx,
		strings.ToLower(params.KeyType),
		params.KeyName,
		options,
		content,
		params.ChunkSize,
	)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	logger.Debug("content signed",
		slog.String("key_type", params.KeyType),
		slog.String("key_name", params.KeyName),
		slog.Int("signature_size", len(signature)),
	)

	if params.Raw {
		_, err = writer.Write(signature)
		return err
	}
	_, err = fmt.Fprintln(writer, base64.StdEncoding.EncodeToString(signature))
	return err
}
