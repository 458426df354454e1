// Package usecase implements the signing backend: the facade that generates key material
// through the plugins, protects it with the encryption engine and decrypts it on demand
// for signing and export.
package usecase

import (
	"context"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	signingService "github.com/allisson/signatrust/internal/signing/service"
)

// SigningBackend is the signer as seen by the rest of the system. No method retries.
type SigningBackend interface {
	// GenerateKeys fills PrivateKey, PublicKey and Certificate of dataKey with freshly generated,
	// encrypted material. dataKey is not persisted.
	GenerateKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error

	// Sign decrypts the material of dataKey into a transient SecKey and signs content.
	Sign(ctx context.Context, dataKey *dataKeyDomain.DataKey, content []byte, options map[string]string) ([]byte, error)

	// DecodePublicKeys replaces PublicKey and Certificate of dataKey with their plaintext.
	// PrivateKey is left encrypted.
	DecodePublicKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error

	// ImportKeys validates externally generated plaintext material, then stores it
	// encrypted on dataKey.
	ImportKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey, privateKey, publicKey, certificate []byte) error

	// LoadPlugin decrypts dataKey and builds a plugin that can be reused across requests.
	LoadPlugin(ctx context.Context, dataKey *dataKeyDomain.DataKey) (signingService.SigningPlugin, error)
}
