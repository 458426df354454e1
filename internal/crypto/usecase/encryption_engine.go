// Package usecase implements the envelope encryption engine.
//
// The engine keeps exactly one unwrapped cluster key per process. Encode always encrypts
// with it and Decode always decrypts with it: ciphertext carries no key identifier, so
// payloads written under a cluster key that has since been rotated out can no longer be
// decoded by this engine. Rotation is therefore an administrative event and not a
// background convenience; the periodic check only replaces keys that have expired.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	cryptoService "github.com/allisson/signatrust/internal/crypto/service"
	"github.com/allisson/signatrust/internal/database"
)

// EngineConfig holds the encryption engine parameters.
type EngineConfig struct {
	Algorithm  cryptoDomain.Algorithm
	KeepInDays int

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// clusterKeyEngine implements EncryptionEngine with a KMS-wrapped, persisted cluster key.
type clusterKeyEngine struct {
	config      EngineConfig
	txManager   database.TxManager
	repo        ClusterKeyRepository
	kms         cryptoService.KMSProvider
	aeadManager cryptoService.AEADManager
	logger      *slog.Logger

	mu     sync.RWMutex
	active *cryptoDomain.SecClusterKey
}

// NewEncryptionEngine creates an uninitialized engine.
func NewEncryptionEngine(
	config EngineConfig,
	txManager database.TxManager,
	repo ClusterKeyRepository,
	kms cryptoService.KMSProvider,
	aeadManager cryptoService.AEADManager,
	logger *slog.Logger,
) (EncryptionEngine, error) {
	if _, err := cryptoDomain.ParseAlgorithm(string(config.Algorithm)); err != nil {
		return nil, err
	}
	if config.KeepInDays <= 0 {
		return nil, fmt.Errorf("%w: keep in days must be positive", cryptoDomain.ErrEngineConfig)
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &clusterKeyEngine{
		config:      config,
		txManager:   txManager,
		repo:        repo,
		kms:         kms,
		aeadManager: aeadManager,
		logger:      logger,
	}, nil
}

// Initialize activates the latest unexpired cluster key, creating a new one if needed.
func (e *clusterKeyEngine) Initialize(ctx context.Context) error {
	var clusterKey *cryptoDomain.ClusterKey

	err := e.txManager.WithTx(ctx, func(ctx context.Context) error {
		latest, err := e.repo.GetLatest(ctx, e.config.Algorithm)
		switch {
		case err == nil && !latest.IsExpired(e.config.Clock()):
			clusterKey = latest
			return nil
		case err != nil && !errors.Is(err, cryptoDomain.ErrClusterKeyNotFound):
			return err
		}

		if latest != nil {
			e.logger.InfoContext(ctx, "cluster key expired, creating a new one",
				slog.String("expired_identity", latest.Identity),
			)
		}

		clusterKey, err = e.createClusterKey(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return e.activate(ctx, clusterKey)
}

// Rotate creates a new cluster key and makes it active. Payloads encoded under the
// previous key become undecodable by this engine.
func (e *clusterKeyEngine) Rotate(ctx context.Context) error {
	var clusterKey *cryptoDomain.ClusterKey

	err := e.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		clusterKey, err = e.createClusterKey(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return e.activate(ctx, clusterKey)
}

// RunRotation re-runs Initialize on every tick so an expired key is replaced in place.
func (e *clusterKeyEngine) RunRotation(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Initialize(ctx); err != nil {
				e.logger.ErrorContext(ctx, "failed to refresh cluster key", slog.Any("error", err))
			}
		}
	}
}

// Encode encrypts content with the active key and prefixes the nonce.
func (e *clusterKeyEngine) Encode(content []byte) ([]byte, error) {
	cipher, err := e.cipher()
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(content, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrEncode, err)
	}

	out := make([]byte, 0, len(nonce)+len(ciphertext))
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

// Decode splits nonce || ciphertext and decrypts it with the active key.
func (e *clusterKeyEngine) Decode(content []byte) ([]byte, error) {
	cipher, err := e.cipher()
	if err != nil {
		return nil, err
	}

	nonceSize := cipher.NonceSize()
	if len(content) < nonceSize {
		return nil, fmt.Errorf("%w: content shorter than nonce", cryptoDomain.ErrEncode)
	}

	plaintext, err := cipher.Decrypt(content[nonceSize:], content[:nonceSize], nil)
	if err != nil {
		return nil, err
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// ActiveKey returns the id and identity of the active cluster key.
func (e *clusterKeyEngine) ActiveKey() (uuid.UUID, string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.active == nil {
		return uuid.Nil, "", false
	}
	return e.active.ID, e.active.Identity, true
}

// cipher builds an AEAD from the active key. The key is only exposed in guarded memory
// for the duration of this call.
func (e *clusterKeyEngine) cipher() (cryptoService.AEAD, error) {
	e.mu.RLock()
	active := e.active
	e.mu.RUnlock()

	if active == nil {
		return nil, cryptoDomain.ErrEngineNotInitialized
	}

	buf, err := active.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	return e.aeadManager.CreateCipher(buf.Bytes(), active.Algorithm)
}

// createClusterKey generates, wraps and persists a fresh cluster key.
func (e *clusterKeyEngine) createClusterKey(ctx context.Context) (*cryptoDomain.ClusterKey, error) {
	raw := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate cluster key: %w", err)
	}
	encoded := hex.EncodeToString(raw)
	cryptoDomain.Zero(raw)

	wrapped, err := e.kms.Encode(ctx, encoded)
	if err != nil {
		return nil, err
	}

	clusterKey := cryptoDomain.NewClusterKey([]byte(wrapped), e.config.Algorithm, e.config.Clock(), e.config.KeepInDays)
	if err := e.repo.Create(ctx, clusterKey); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "cluster key created",
		slog.String("cluster_key_id", clusterKey.ID.String()),
		slog.String("identity", clusterKey.Identity),
		slog.Time("expire_at", clusterKey.ExpireAt),
	)
	return clusterKey, nil
}

// activate unwraps clusterKey through the KMS and swaps it in as the active key.
func (e *clusterKeyEngine) activate(ctx context.Context, clusterKey *cryptoDomain.ClusterKey) error {
	e.mu.RLock()
	current := e.active
	e.mu.RUnlock()
	if current != nil && current.ID == clusterKey.ID {
		return nil
	}

	unwrapped, err := e.kms.Decode(ctx, string(clusterKey.Data))
	if err != nil {
		return err
	}

	raw, err := hex.DecodeString(unwrapped)
	if err != nil {
		return fmt.Errorf("%w: cluster key %s is not hex encoded", cryptoDomain.ErrEncode, clusterKey.ID)
	}

	secKey, err := cryptoDomain.NewSecClusterKey(clusterKey, raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.active = secKey
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "cluster key activated", slog.String("cluster_key", secKey.String()))
	return nil
}
