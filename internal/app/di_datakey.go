package app

import (
	"fmt"

	authService "github.com/allisson/signatrust/internal/auth/service"
	dataKeyHTTP "github.com/allisson/signatrust/internal/datakey/http"
	dataKeyRepository "github.com/allisson/signatrust/internal/datakey/repository"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
	signingCache "github.com/allisson/signatrust/internal/signing/cache"
)

// dataKeyStore serves both the control plane and the signing caches.
type dataKeyStore interface {
	dataKeyUseCase.DataKeyRepository
	signingCache.DataKeyLoader
}

// DataKeyRepository returns the data key repository for the configured driver.
func (c *Container) DataKeyRepository() (dataKeyUseCase.DataKeyRepository, error) {
	return c.dataKeyStore()
}

func (c *Container) dataKeyStore() (dataKeyStore, error) {
	return c.dataKeyRepository.get(func() (dataKeyStore, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("data key repository: %w", err)
		}
		switch c.config.DBDriver {
		case "postgres":
			return dataKeyRepository.NewPostgreSQLDataKeyRepository(db), nil
		case "mysql":
			return dataKeyRepository.NewMySQLDataKeyRepository(db), nil
		}
		return nil, fmt.Errorf("data key repository: unsupported database driver %q", c.config.DBDriver)
	})
}

// DataKeyUseCase returns the data key use case, decorated with metrics when enabled.
func (c *Container) DataKeyUseCase() (dataKeyUseCase.DataKeyUseCase, error) {
	return c.dataKeyUseCase.get(func() (dataKeyUseCase.DataKeyUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("data key use case: %w", err)
		}
		repo, err := c.DataKeyRepository()
		if err != nil {
			return nil, fmt.Errorf("data key use case: %w", err)
		}
		backend, err := c.SigningBackend()
		if err != nil {
			return nil, fmt.Errorf("data key use case: %w", err)
		}

		useCase := dataKeyUseCase.NewDataKeyUseCase(txManager, repo, backend, c.Logger())
		if !c.config.MetricsEnabled {
			return useCase, nil
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("data key use case: %w", err)
		}
		return dataKeyUseCase.NewDataKeyUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// DataKeyHandler returns the HTTP handler for data key management.
func (c *Container) DataKeyHandler() (*dataKeyHTTP.DataKeyHandler, error) {
	return c.dataKeyHandler.get(func() (*dataKeyHTTP.DataKeyHandler, error) {
		useCase, err := c.DataKeyUseCase()
		if err != nil {
			return nil, fmt.Errorf("data key handler: %w", err)
		}
		return dataKeyHTTP.NewDataKeyHandler(useCase, c.Logger()), nil
	})
}

// TokenService returns the admin token hashing service.
func (c *Container) TokenService() authService.TokenService {
	return c.tokenService.ensure(authService.NewTokenService)
}
