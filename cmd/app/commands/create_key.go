package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/signatrust/internal/datakey/http/dto"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
)

// CreateKeyParams holds the create-key flags.
type CreateKeyParams struct {
	Name        string
	Description string
	Email       string
	KeyType     string
	Attributes  []string
	CreateAt    string
	ExpireAt    string
}

// RunCreateKey generates a data key without going through the HTTP control plane.
// Attributes are given as key=value pairs.
func RunCreateKey(
	ctx context.Context,
	useCase dataKeyUseCase.DataKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	params CreateKeyParams,
	format string,
) error {
	attributes, err := parseAttributes(params.Attributes)
	if err != nil {
		return err
	}

	req := dto.CreateDataKeyRequest{
		Name:        params.Name,
		Description: params.Description,
		Email:       params.Email,
		KeyType:     params.KeyType,
		Attributes:  attributes,
		CreateAt:    params.CreateAt,
		ExpireAt:    params.ExpireAt,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid key parameters: %w", err)
	}

	input, err := req.ToInput("cli")
	if err != nil {
		return fmt.Errorf("invalid key parameters: %w", err)
	}

	dataKey, err := useCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	logger.Info("data key created",
		slog.String("id", dataKey.ID.String()),
		slog.String("name", dataKey.Name),
		slog.String("key_type", string(dataKey.KeyType)),
	)

	response := dto.MapDataKeyToResponse(dataKey)
	return writeOutput(writer, format, response, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Key ID: %s\nName: %s\nType: %s\nExpires: %s\n",
			response.ID, response.Name, response.KeyType, response.ExpireAt.Format(time.RFC3339))
		return err
	})
}

// parseAttributes converts key=value pairs into a map.
func parseAttributes(pairs []string) (map[string]string, error) {
	attributes := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid attribute %q (expected key=value)", pair)
		}
		attributes[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return attributes, nil
}
