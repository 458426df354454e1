package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/signatrust/internal/database"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

type dataKeyUseCase struct {
	txManager database.TxManager
	repo      DataKeyRepository
	backend   SigningBackend
	logger    *slog.Logger
}

// NewDataKeyUseCase creates a new DataKeyUseCase.
func NewDataKeyUseCase(
	txManager database.TxManager,
	repo DataKeyRepository,
	backend SigningBackend,
	logger *slog.Logger,
) DataKeyUseCase {
	return &dataKeyUseCase{
		txManager: txManager,
		repo:      repo,
		backend:   backend,
		logger:    logger,
	}
}

func (d *dataKeyUseCase) List(ctx context.Context) ([]*dataKeyDomain.DataKey, error) {
	return d.repo.GetAll(ctx)
}

// Create generates key material through the backend and persists the encrypted result.
// Names are unique among live keys.
func (d *dataKeyUseCase) Create(ctx context.Context, input CreateInput) (*dataKeyDomain.DataKey, error) {
	if err := d.ensureNameAvailable(ctx, input.Name); err != nil {
		return nil, err
	}

	dataKey := newDataKey(input)
	if err := d.backend.GenerateKeys(ctx, dataKey); err != nil {
		return nil, err
	}

	created, err := d.repo.Create(ctx, dataKey)
	if err != nil {
		return nil, err
	}

	d.logger.Info("data key created",
		slog.String("key", created.Identity()),
		slog.String("name", created.Name),
	)
	return created, nil
}

// Import validates externally generated material, encrypts it and persists it.
func (d *dataKeyUseCase) Import(ctx context.Context, input ImportInput) (*dataKeyDomain.DataKey, error) {
	if err := d.ensureNameAvailable(ctx, input.Name); err != nil {
		return nil, err
	}

	dataKey := newDataKey(input.CreateInput)
	if err := d.backend.ImportKeys(ctx, dataKey, input.PrivateKey, input.PublicKey, input.Certificate); err != nil {
		return nil, err
	}

	created, err := d.repo.Create(ctx, dataKey)
	if err != nil {
		return nil, err
	}

	d.logger.Info("data key imported",
		slog.String("key", created.Identity()),
		slog.String("name", created.Name),
	)
	return created, nil
}

func (d *dataKeyUseCase) Get(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error) {
	return d.repo.GetByID(ctx, id)
}

func (d *dataKeyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return d.txManager.WithTx(ctx, func(ctx context.Context) error {
		dataKey, err := d.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return d.repo.DeleteByID(ctx, dataKey.ID)
	})
}

func (d *dataKeyUseCase) Export(ctx context.Context, id uuid.UUID) (*dataKeyDomain.ExportKey, error) {
	dataKey, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.backend.DecodePublicKeys(ctx, dataKey); err != nil {
		return nil, err
	}
	return dataKeyDomain.NewExportKey(dataKey), nil
}

func (d *dataKeyUseCase) Enable(ctx context.Context, id uuid.UUID) error {
	return d.updateState(ctx, id, dataKeyDomain.KeyStateEnabled)
}

func (d *dataKeyUseCase) Disable(ctx context.Context, id uuid.UUID) error {
	return d.updateState(ctx, id, dataKeyDomain.KeyStateDisabled)
}

// updateState does not reach running signers: a key they already cached stays usable.
func (d *dataKeyUseCase) updateState(ctx context.Context, id uuid.UUID, state dataKeyDomain.KeyState) error {
	return d.txManager.WithTx(ctx, func(ctx context.Context) error {
		dataKey, err := d.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := d.repo.UpdateState(ctx, dataKey.ID, state); err != nil {
			return err
		}

		d.logger.Info("data key state changed",
			slog.String("key", dataKey.Identity()),
			slog.String("state", state.String()),
		)
		return nil
	})
}

func (d *dataKeyUseCase) ensureNameAvailable(ctx context.Context, name string) error {
	_, err := d.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return dataKeyDomain.ErrDataKeyAlreadyExists
	case apperrors.Is(err, dataKeyDomain.ErrDataKeyNotFound):
		return nil
	default:
		return err
	}
}

func newDataKey(input CreateInput) *dataKeyDomain.DataKey {
	return dataKeyDomain.NewDataKey(
		input.Name,
		input.Description,
		input.User,
		input.Email,
		input.KeyType,
		input.Attributes,
		input.CreateAt,
		input.ExpireAt,
	)
}
