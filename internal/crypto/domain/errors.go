package domain

import (
	"github.com/allisson/signatrust/internal/errors"
)

// Envelope encryption error definitions.
//
// These wrap the standard errors from internal/errors so the transport layers can map
// them without knowing about cryptography: configuration mistakes surface as invalid
// input, external key management failures as unavailable.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedKMSProvider indicates the configured KMS provider type is unknown.
	ErrUnsupportedKMSProvider = errors.Wrap(errors.ErrInvalidInput, "unsupported kms provider")

	// ErrKMSConfig indicates the KMS provider configuration is incomplete or inconsistent.
	ErrKMSConfig = errors.Wrap(errors.ErrInvalidInput, "invalid kms configuration")

	// ErrEngineConfig indicates invalid encryption engine parameters.
	ErrEngineConfig = errors.Wrap(errors.ErrInvalidInput, "invalid encryption engine configuration")

	// ErrInvalidKeySize indicates a cluster key is not KeySize bytes long.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEncode indicates engine input could not be encrypted or decrypted. It covers
	// ciphertext shorter than the nonce and authentication tag mismatches alike.
	ErrEncode = errors.Wrap(errors.ErrInvalidInput, "encode error")

	// ErrKMSInvoke indicates a call to the key management service failed.
	ErrKMSInvoke = errors.Wrap(errors.ErrUnavailable, "kms invoke error")

	// ErrEngineNotInitialized indicates Encode or Decode was called before Initialize.
	ErrEngineNotInitialized = errors.Wrap(errors.ErrUnavailable, "encryption engine not initialized")

	// ErrClusterKeyNotFound indicates no cluster key exists for the lookup.
	ErrClusterKeyNotFound = errors.Wrap(errors.ErrNotFound, "cluster key not found")
)
