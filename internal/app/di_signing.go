package app

import (
	"context"
	"fmt"

	signingCache "github.com/allisson/signatrust/internal/signing/cache"
	signingGRPC "github.com/allisson/signatrust/internal/signing/grpc"
	signingUseCase "github.com/allisson/signatrust/internal/signing/usecase"
)

const (
	// SignCacheModeDataKey caches encrypted data key snapshots and decrypts on every request.
	SignCacheModeDataKey = "datakey"
	// SignCacheModePlugin caches ready signing plugins.
	SignCacheModePlugin = "plugin"
)

// SigningBackend returns the signing backend. Building it initializes the encryption
// engine, which creates the first cluster key when none exists.
func (c *Container) SigningBackend() (signingUseCase.SigningBackend, error) {
	return c.signingBackend.get(func() (signingUseCase.SigningBackend, error) {
		engine, err := c.EncryptionEngine()
		if err != nil {
			return nil, fmt.Errorf("signing backend: %w", err)
		}

		backend, err := signingUseCase.NewSigningBackend(
			context.Background(),
			c.config.SignBackendType,
			engine,
			c.Logger(),
		)
		if err != nil {
			return nil, fmt.Errorf("signing backend: %w", err)
		}

		if !c.config.MetricsEnabled {
			return backend, nil
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("signing backend: %w", err)
		}
		return signingUseCase.NewSigningBackendWithMetrics(backend, businessMetrics), nil
	})
}

// Signer returns the signer used by the data plane, selected by the sign cache mode.
func (c *Container) Signer() (signingGRPC.Signer, error) {
	return c.signer.get(func() (signingGRPC.Signer, error) {
		store, err := c.dataKeyStore()
		if err != nil {
			return nil, fmt.Errorf("signer: %w", err)
		}
		backend, err := c.SigningBackend()
		if err != nil {
			return nil, fmt.Errorf("signer: %w", err)
		}

		switch c.config.SignCacheMode {
		case SignCacheModeDataKey:
			return signingGRPC.NewBackendSigner(signingCache.NewDataKeyCache(store), backend), nil
		case SignCacheModePlugin:
			return signingGRPC.NewPluginSigner(signingCache.NewPluginCache(store, backend)), nil
		}
		return nil, fmt.Errorf("signer: unsupported sign cache mode %q", c.config.SignCacheMode)
	})
}

// GRPCServer returns the data plane signing server.
func (c *Container) GRPCServer() (*signingGRPC.Server, error) {
	return c.grpcServer.get(func() (*signingGRPC.Server, error) {
		signer, err := c.Signer()
		if err != nil {
			return nil, fmt.Errorf("grpc server: %w", err)
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("grpc server: %w", err)
		}

		cfg := signingGRPC.ServerConfig{
			Host:             c.config.GRPCHost,
			Port:             c.config.GRPCPort,
			MaxRecvMsgSize:   c.config.GRPCMaxRecvMsgSize,
			MetricsNamespace: c.config.MetricsNamespace,
		}
		if provider != nil {
			cfg.MeterProvider = provider.MeterProvider()
		}
		handler := signingGRPC.NewSignHandler(signer, c.config.GRPCMaxSignPayloadSize, c.Logger())
		return signingGRPC.NewServer(cfg, handler, c.Logger()), nil
	})
}
