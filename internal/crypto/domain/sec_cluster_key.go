package domain

import (
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
)

// SecClusterKey is the unwrapped cluster key. The key bytes are sealed in a memguard
// enclave and only decrypted into guarded memory for the duration of a cipher call.
type SecClusterKey struct {
	ID        uuid.UUID
	Algorithm Algorithm
	Identity  string

	enclave *memguard.Enclave
}

// NewSecClusterKey seals key into an enclave. key is wiped by this call.
func NewSecClusterKey(clusterKey *ClusterKey, key []byte) (*SecClusterKey, error) {
	if len(key) != KeySize {
		Zero(key)
		return nil, ErrInvalidKeySize
	}

	return &SecClusterKey{
		ID:        clusterKey.ID,
		Algorithm: clusterKey.Algorithm,
		Identity:  clusterKey.Identity,
		enclave:   memguard.NewEnclave(key),
	}, nil
}

// Open decrypts the key into a locked buffer. Callers must Destroy the buffer.
func (s *SecClusterKey) Open() (*memguard.LockedBuffer, error) {
	if s == nil || s.enclave == nil {
		return nil, ErrEngineNotInitialized
	}
	buf, err := s.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open cluster key enclave: %w", err)
	}
	return buf, nil
}

// String never prints key material.
func (s *SecClusterKey) String() string {
	return fmt.Sprintf("id: %s, data: ******, algorithm: %s", s.ID, s.Algorithm)
}

// GoString never prints key material.
func (s *SecClusterKey) GoString() string {
	return s.String()
}
