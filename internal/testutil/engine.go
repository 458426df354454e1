package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	cryptoService "github.com/allisson/signatrust/internal/crypto/service"
	cryptoUsecase "github.com/allisson/signatrust/internal/crypto/usecase"
)

// MemoryClusterKeyRepository keeps cluster keys in a slice.
type MemoryClusterKeyRepository struct {
	mu   sync.Mutex
	keys []*cryptoDomain.ClusterKey
}

// Create appends clusterKey.
func (r *MemoryClusterKeyRepository) Create(ctx context.Context, clusterKey *cryptoDomain.ClusterKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, clusterKey)
	return nil
}

// GetLatest returns the last created key for alg.
func (r *MemoryClusterKeyRepository) GetLatest(
	ctx context.Context,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.ClusterKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.keys) - 1; i >= 0; i-- {
		if r.keys[i].Algorithm == alg {
			return r.keys[i], nil
		}
	}
	return nil, cryptoDomain.ErrClusterKeyNotFound
}

// GetByID returns the key with id.
func (r *MemoryClusterKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*cryptoDomain.ClusterKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.keys {
		if key.ID == id {
			return key, nil
		}
	}
	return nil, cryptoDomain.ErrClusterKeyNotFound
}

// DeleteByID removes the key with id.
func (r *MemoryClusterKeyRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, key := range r.keys {
		if key.ID == id {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (r *MemoryClusterKeyRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// NoTxManager runs fn without a transaction.
type NoTxManager struct{}

// WithTx calls fn with ctx.
func (NoTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewEngine returns an uninitialized AES-GCM engine backed by memory and the dummy KMS.
func NewEngine(t *testing.T) cryptoUsecase.EncryptionEngine {
	t.Helper()

	engine, err := cryptoUsecase.NewEncryptionEngine(
		cryptoUsecase.EngineConfig{Algorithm: cryptoDomain.AESGCM, KeepInDays: 180},
		NoTxManager{},
		&MemoryClusterKeyRepository{},
		cryptoService.NewDummyKMSProvider(DiscardLogger()),
		cryptoService.NewAEADManager(),
		DiscardLogger(),
	)
	require.NoError(t, err)
	return engine
}

// NewInitializedEngine returns an engine from NewEngine that is ready for Encode and Decode.
func NewInitializedEngine(t *testing.T) cryptoUsecase.EncryptionEngine {
	t.Helper()

	engine := NewEngine(t)
	require.NoError(t, engine.Initialize(context.Background()))
	return engine
}
