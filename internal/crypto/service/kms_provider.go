package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMS provider types accepted by NewKMSProvider.
const (
	KMSProviderDummy   = "dummy"
	KMSProviderGoCloud = "gocloud"
)

// providerSchemes maps provider aliases to the URI scheme their keeper expects.
var providerSchemes = map[string]string{
	"gcpkms":        "gcpkms://",
	"awskms":        "awskms://",
	"azurekeyvault": "azurekeyvault://",
	"hashivault":    "hashivault://",
	"localsecrets":  "base64key://",
}

// NewKMSProvider builds the provider selected by providerType.
//
// "dummy" returns a passthrough provider for local development. "gocloud" and the vendor
// aliases ("gcpkms", "awskms", "azurekeyvault", "hashivault", "localsecrets") open a
// gocloud.dev secrets keeper for keyURI; a vendor alias also pins the URI scheme.
func NewKMSProvider(ctx context.Context, providerType, keyURI string, logger *slog.Logger) (KMSProvider, error) {
	switch providerType {
	case KMSProviderDummy:
		return NewDummyKMSProvider(logger), nil
	case KMSProviderGoCloud:
		return NewKeeperKMSProvider(ctx, keyURI)
	}

	scheme, ok := providerSchemes[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedKMSProvider, providerType)
	}
	if !strings.HasPrefix(keyURI, scheme) {
		return nil, fmt.Errorf("%w: provider %s requires a %s key uri", cryptoDomain.ErrKMSConfig, providerType, scheme)
	}
	return NewKeeperKMSProvider(ctx, keyURI)
}

// DummyKMSProvider returns its input unchanged. It exists for development and tests only.
type DummyKMSProvider struct {
	logger *slog.Logger
}

// NewDummyKMSProvider creates a passthrough KMS provider.
func NewDummyKMSProvider(logger *slog.Logger) *DummyKMSProvider {
	return &DummyKMSProvider{logger: logger}
}

// Encode returns plaintext unchanged.
func (d *DummyKMSProvider) Encode(ctx context.Context, plaintext string) (string, error) {
	d.warn(ctx, "encode")
	return plaintext, nil
}

// Decode returns ciphertext unchanged.
func (d *DummyKMSProvider) Decode(ctx context.Context, ciphertext string) (string, error) {
	d.warn(ctx, "decode")
	return ciphertext, nil
}

// Close is a no-op.
func (d *DummyKMSProvider) Close() error {
	return nil
}

func (d *DummyKMSProvider) warn(ctx context.Context, operation string) {
	if d.logger == nil {
		return
	}
	d.logger.WarnContext(ctx, "dummy kms provider in use, please don't use it in production",
		slog.String("operation", operation),
	)
}

// KeeperKMSProvider wraps cluster key material with a gocloud.dev secrets keeper.
// Supports gcpkms://, awskms://, azurekeyvault://, hashivault:// and base64key://.
type KeeperKMSProvider struct {
	keeper *secrets.Keeper
}

// NewKeeperKMSProvider opens the keeper addressed by keyURI.
func NewKeeperKMSProvider(ctx context.Context, keyURI string) (*KeeperKMSProvider, error) {
	if keyURI == "" {
		return nil, fmt.Errorf("%w: empty key uri", cryptoDomain.ErrKMSConfig)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open KMS keeper: %w", cryptoDomain.ErrKMSInvoke, err)
	}
	return &KeeperKMSProvider{keeper: keeper}, nil
}

// Encode encrypts plaintext with the keeper and returns it base64 encoded.
func (k *KeeperKMSProvider) Encode(ctx context.Context, plaintext string) (string, error) {
	ciphertext, err := k.keeper.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: encrypt: %w", cryptoDomain.ErrKMSInvoke, err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decode reverses Encode.
func (k *KeeperKMSProvider) Decode(ctx context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext: %w", cryptoDomain.ErrKMSInvoke, err)
	}

	plaintext, err := k.keeper.Decrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt: %w", cryptoDomain.ErrKMSInvoke, err)
	}
	return string(plaintext), nil
}

// Close releases the keeper.
func (k *KeeperKMSProvider) Close() error {
	return k.keeper.Close()
}
