// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/signatrust/internal/app"
)

// IOTuple is the input and output of an interactive command.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

func DefaultIO() IOTuple {
	return IOTuple{Reader: os.Stdin, Writer: os.Stdout}
}

// closeContainer releases the container with a fresh context, since the command
// context may already be cancelled.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("container shutdown failed", slog.Any("error", err))
	}
}

// writeOutput prints value as indented JSON when format is "json", otherwise calls text.
func writeOutput(w io.Writer, format string, value any, text func(w io.Writer) error) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}
