package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
)

// ClusterKeyRepository defines the interface for cluster key persistence.
type ClusterKeyRepository interface {
	// Create stores a new wrapped cluster key.
	Create(ctx context.Context, clusterKey *cryptoDomain.ClusterKey) error

	// GetLatest returns the newest cluster key for alg or ErrClusterKeyNotFound.
	GetLatest(ctx context.Context, alg cryptoDomain.Algorithm) (*cryptoDomain.ClusterKey, error)

	// GetByID returns a cluster key by id or ErrClusterKeyNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*cryptoDomain.ClusterKey, error)

	// DeleteByID removes a cluster key.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// EncryptionEngine protects signing key material with the active cluster key.
type EncryptionEngine interface {
	// Initialize loads the latest cluster key for the configured algorithm, creating one
	// when none exists or the latest has expired. It must complete before Encode/Decode.
	Initialize(ctx context.Context) error

	// Rotate creates a new cluster key and makes it active.
	Rotate(ctx context.Context) error

	// RunRotation calls Initialize every interval until ctx is done.
	RunRotation(ctx context.Context, interval time.Duration)

	// Encode encrypts content and returns nonce || ciphertext.
	Encode(content []byte) ([]byte, error)

	// Decode reverses Encode using the active cluster key.
	Decode(content []byte) ([]byte, error)

	// ActiveKey returns the id and identity of the active cluster key.
	ActiveKey() (uuid.UUID, string, bool)
}
