// Package domain defines the envelope encryption model that protects signing key material.
//
// A ClusterKey is a random 256-bit symmetric key, wrapped by an external KMS and persisted.
// The engine unwraps the latest ClusterKey for its algorithm into a SecClusterKey, which
// only lives in process memory, and uses it to encrypt private keys, public keys and
// certificates before they reach the database.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// identityDateLayout renders creation dates as dd-mm-YYYY.
const identityDateLayout = "02-01-2006"

// ClusterKey is the persisted, KMS-wrapped form of a cluster key.
type ClusterKey struct {
	ID        uuid.UUID // Unique identifier (UUIDv7, time ordered)
	Data      []byte    // KMS ciphertext of the hex-encoded key
	Algorithm Algorithm // AEAD the key is used with
	Identity  string    // Human readable label, "<algorithm>-<dd-mm-YYYY>"
	CreatedAt time.Time
	ExpireAt  time.Time
}

// NewClusterKey builds a ClusterKey for wrapped key data created at now and valid for keepInDays.
func NewClusterKey(data []byte, alg Algorithm, now time.Time, keepInDays int) *ClusterKey {
	now = now.UTC()
	return &ClusterKey{
		ID:        uuid.Must(uuid.NewV7()),
		Data:      data,
		Algorithm: alg,
		Identity:  ClusterKeyIdentity(alg, now),
		CreatedAt: now,
		ExpireAt:  now.AddDate(0, 0, keepInDays),
	}
}

// ClusterKeyIdentity returns the audit label of a cluster key.
func ClusterKeyIdentity(alg Algorithm, createdAt time.Time) string {
	return fmt.Sprintf("%s-%s", alg, createdAt.UTC().Format(identityDateLayout))
}

// IsExpired reports whether the key must be replaced.
func (c *ClusterKey) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpireAt)
}
