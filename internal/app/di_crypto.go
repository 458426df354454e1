package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	cryptoRepository "github.com/allisson/signatrust/internal/crypto/repository"
	cryptoService "github.com/allisson/signatrust/internal/crypto/service"
	cryptoUseCase "github.com/allisson/signatrust/internal/crypto/usecase"
)

// KMSProvider returns the provider wrapping cluster keys.
func (c *Container) KMSProvider() (cryptoService.KMSProvider, error) {
	return c.kmsProvider.get(func() (cryptoService.KMSProvider, error) {
		return cryptoService.NewKMSProvider(
			context.Background(),
			c.config.KMSProvider,
			c.config.KMSKeyURI,
			c.Logger(),
		)
	})
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	return c.aeadManager.ensure(func() cryptoService.AEADManager {
		return cryptoService.NewAEADManager()
	})
}

// ClusterKeyRepository returns the cluster key repository for the configured driver.
func (c *Container) ClusterKeyRepository() (cryptoUseCase.ClusterKeyRepository, error) {
	return c.clusterKeyRepository.get(func() (cryptoUseCase.ClusterKeyRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("cluster key repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			return cryptoRepository.NewPostgreSQLClusterKeyRepository(db), nil
		case "mysql":
			return cryptoRepository.NewMySQLClusterKeyRepository(db), nil
		}
		return nil, fmt.Errorf("cluster key repository: unsupported database driver %q", c.config.DBDriver)
	})
}

// EncryptionEngine returns the envelope encryption engine. It is not initialized here;
// the signing backend does that on first use.
func (c *Container) EncryptionEngine() (cryptoUseCase.EncryptionEngine, error) {
	return c.encryptionEngine.get(c.buildEncryptionEngine)
}

func (c *Container) buildEncryptionEngine() (cryptoUseCase.EncryptionEngine, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}
	repo, err := c.ClusterKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}
	kms, err := c.KMSProvider()
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}

	engine, err := cryptoUseCase.NewEncryptionEngine(
		cryptoUseCase.EngineConfig{
			Algorithm:  algorithm,
			KeepInDays: c.config.ClusterKeyKeepInDays,
		},
		txManager,
		repo,
		kms,
		c.AEADManager(),
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}

	if !c.config.MetricsEnabled {
		return engine, nil
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("encryption engine: %w", err)
	}
	return cryptoUseCase.NewEncryptionEngineWithMetrics(engine, businessMetrics), nil
}
