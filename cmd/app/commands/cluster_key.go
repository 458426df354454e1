package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoUseCase "github.com/allisson/signatrust/internal/crypto/usecase"
)

type clusterKeyOutput struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
}

// RunCreateClusterKey makes sure an unexpired cluster key exists, creating one when needed.
// Safe to run more than once.
//
// Requirements: Database must be migrated and the KMS provider reachable.
func RunCreateClusterKey(
	ctx context.Context,
	engine cryptoUseCase.EncryptionEngine,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize cluster key: %w", err)
	}
	return reportClusterKey(engine, logger, writer, format, "cluster key ready")
}

// RunRotateClusterKey creates a new cluster key and makes it active. Data keys encrypted
// under the previous cluster key can no longer be decrypted by a server running the new one.
func RunRotateClusterKey(
	ctx context.Context,
	engine cryptoUseCase.EncryptionEngine,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := engine.Rotate(ctx); err != nil {
		return fmt.Errorf("failed to rotate cluster key: %w", err)
	}
	logger.Warn("data keys encrypted under the previous cluster key can no longer be decrypted")
	return reportClusterKey(engine, logger, writer, format, "cluster key rotated")
}

func reportClusterKey(
	engine cryptoUseCase.EncryptionEngine,
	logger *slog.Logger,
	writer io.Writer,
	format string,
	message string,
) error {
	id, identity, ok := engine.ActiveKey()
	if !ok {
		return fmt.Errorf("no active cluster key")
	}

	logger.Info(message, slog.String("cluster_key_id", id.String()))

	output := clusterKeyOutput{ID: id.String(), Identity: identity}
	return writeOutput(writer, format, output, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Cluster key ID: %s\nIdentity: %s\n", output.ID, output.Identity)
		return err
	})
}
