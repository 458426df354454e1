// Package app wires configuration into the running control plane, data plane and metrics servers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	authService "github.com/allisson/signatrust/internal/auth/service"
	"github.com/allisson/signatrust/internal/config"
	cryptoService "github.com/allisson/signatrust/internal/crypto/service"
	cryptoUseCase "github.com/allisson/signatrust/internal/crypto/usecase"
	"github.com/allisson/signatrust/internal/database"
	dataKeyHTTP "github.com/allisson/signatrust/internal/datakey/http"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
	"github.com/allisson/signatrust/internal/http"
	"github.com/allisson/signatrust/internal/metrics"
	signingGRPC "github.com/allisson/signatrust/internal/signing/grpc"
	signingUseCase "github.com/allisson/signatrust/internal/signing/usecase"
)

// Container assembles components on first access. Every getter is safe for concurrent use,
// and a component whose construction failed keeps returning the same error.
type Container struct {
	config *config.Config

	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	kmsProvider          lazy[cryptoService.KMSProvider]
	aeadManager          lazy[cryptoService.AEADManager]
	clusterKeyRepository lazy[cryptoUseCase.ClusterKeyRepository]
	encryptionEngine     lazy[cryptoUseCase.EncryptionEngine]

	dataKeyRepository lazy[dataKeyStore]
	dataKeyUseCase    lazy[dataKeyUseCase.DataKeyUseCase]
	dataKeyHandler    lazy[*dataKeyHTTP.DataKeyHandler]
	tokenService      lazy[authService.TokenService]

	signingBackend lazy[signingUseCase.SigningBackend]
	signer         lazy[signingGRPC.Signer]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]
	grpcServer    lazy[*signingGRPC.Server]
}

// NewContainer returns an empty container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns a JSON logger writing to stdout at the configured level.
func (c *Container) Logger() *slog.Logger {
	return c.logger.ensure(func() *slog.Logger {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(c.config.LogLevel),
		}))
	})
}

// DB returns the database pool, connecting on first access.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(func() (*sql.DB, error) {
		db, err := database.Connect(context.Background(), database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return db, nil
	})
}

// TxManager returns the transaction manager bound to DB.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the Prometheus backed meter provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		return metrics.NewProvider(c.config.MetricsNamespace)
	})
}

// BusinessMetrics returns the recorder used by the metrics decorators. It discards
// measurements when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("business metrics: %w", err)
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// HTTPServer returns the control plane HTTP server. ctx bounds its background helpers.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}
		handler, err := c.DataKeyHandler()
		if err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}

		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		server.SetupRouter(ctx, c.config, handler, c.TokenService(), provider)
		return server, nil
	})
}

// MetricsServer returns the server exposing /metrics, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("metrics server: %w", err)
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// closer is one step of Shutdown.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

// Shutdown stops servers before the resources they depend on. Components that were never
// built are skipped. Errors from every step are joined.
func (c *Container) Shutdown(ctx context.Context) error {
	var steps []closer

	if server, ok := c.httpServer.peek(); ok {
		steps = append(steps, closer{"http server", server.Shutdown})
	}
	if server, ok := c.grpcServer.peek(); ok {
		steps = append(steps, closer{"grpc server", server.Shutdown})
	}
	if server, ok := c.metricsServer.peek(); ok && server != nil {
		steps = append(steps, closer{"metrics server", server.Shutdown})
	}
	if provider, ok := c.metricsProvider.peek(); ok && provider != nil {
		steps = append(steps, closer{"metrics provider", provider.Shutdown})
	}
	if kms, ok := c.kmsProvider.peek(); ok {
		steps = append(steps, closer{"kms provider", func(context.Context) error { return kms.Close() }})
	}
	if db, ok := c.db.peek(); ok {
		steps = append(steps, closer{"database", func(context.Context) error { return db.Close() }})
	}

	var errs []error
	for _, step := range steps {
		if err := step.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	return errors.Join(errs...)
}

// parseLogLevel accepts debug, info, warn and error in any case. Anything else means info.
func parseLogLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
