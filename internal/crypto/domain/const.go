package domain

import (
	"fmt"
)

// Algorithm represents the AEAD used by the envelope encryption engine to protect
// signing key material with the active cluster key.
//
// Both algorithms take a 256-bit key and a 96-bit nonce, so ciphertext produced by
// the engine always starts with a NonceSize-byte prefix regardless of the choice.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred where AES is not hardware accelerated.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the length in bytes of every cluster key.
	KeySize = 32

	// NonceSize is the length in bytes of the nonce prefixed to engine ciphertext.
	NonceSize = 12
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM, ChaCha20:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}
