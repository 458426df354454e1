// Package service provides the cryptographic primitives behind the envelope encryption
// engine: AEAD ciphers keyed by cluster keys and the key management providers that wrap
// those cluster keys.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length expected by Decrypt.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KMSProvider wraps and unwraps cluster key material through a key management service.
// Both calls may perform network I/O and are never retried here.
type KMSProvider interface {
	// Encode wraps plaintext and returns an opaque, printable ciphertext.
	Encode(ctx context.Context, plaintext string) (string, error)

	// Decode unwraps a ciphertext previously returned by Encode.
	Decode(ctx context.Context, ciphertext string) (string, error)

	// Close releases provider resources.
	Close() error
}
