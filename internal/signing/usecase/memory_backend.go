package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/signatrust/internal/crypto/usecase"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	signingService "github.com/allisson/signatrust/internal/signing/service"
)

// BackendMemory performs every sensitive operation in process memory.
const BackendMemory = "memory"

// NewSigningBackend creates the backend selected by backendType and initializes its
// encryption engine before returning it.
func NewSigningBackend(
	ctx context.Context,
	backendType string,
	engine cryptoUsecase.EncryptionEngine,
	logger *slog.Logger,
) (SigningBackend, error) {
	switch backendType {
	case BackendMemory:
		if err := engine.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize encryption engine: %w", err)
		}
		return NewMemorySigningBackend(engine, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q sign backend", dataKeyDomain.ErrUnsupportedType, backendType)
	}
}

// MemorySigningBackend implements SigningBackend on top of an initialized engine.
type MemorySigningBackend struct {
	engine cryptoUsecase.EncryptionEngine
	logger *slog.Logger
}

// NewMemorySigningBackend wraps an already initialized engine.
func NewMemorySigningBackend(engine cryptoUsecase.EncryptionEngine, logger *slog.Logger) *MemorySigningBackend {
	return &MemorySigningBackend{engine: engine, logger: logger}
}

// GenerateKeys generates material with the plugin matching dataKey.KeyType.
func (m *MemorySigningBackend) GenerateKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error {
	privateKey, publicKey, certificate, err := signingService.GenerateKeys(dataKey.KeyType, dataKey.Attributes)
	if err != nil {
		return err
	}
	defer func() {
		cryptoDomain.Zero(privateKey)
	}()

	if err := m.encodeInto(dataKey, privateKey, publicKey, certificate); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "data key material generated",
		slog.String("identity", dataKey.Identity()),
	)
	return nil
}

// Sign decrypts dataKey, signs content and scrubs the decrypted material before returning.
func (m *MemorySigningBackend) Sign(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
	content []byte,
	options map[string]string,
) ([]byte, error) {
	plugin, err := m.LoadPlugin(ctx, dataKey)
	if err != nil {
		return nil, err
	}
	return plugin.Sign(content, options)
}

// DecodePublicKeys decrypts only the public half of dataKey.
func (m *MemorySigningBackend) DecodePublicKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error {
	publicKey, err := m.engine.Decode(dataKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to decode public key of %s: %w", dataKey.Identity(), err)
	}
	certificate, err := m.engine.Decode(dataKey.Certificate)
	if err != nil {
		return fmt.Errorf("failed to decode certificate of %s: %w", dataKey.Identity(), err)
	}

	dataKey.PublicKey = publicKey
	dataKey.Certificate = certificate
	return nil
}

// ImportKeys checks that the material parses for dataKey.KeyType before encrypting it.
func (m *MemorySigningBackend) ImportKeys(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
	privateKey, publicKey, certificate []byte,
) error {
	secKey := dataKeyDomain.NewSecKey(
		dataKey.Identity(),
		bytes.Clone(privateKey),
		bytes.Clone(publicKey),
		bytes.Clone(certificate),
	)
	_, err := signingService.NewPlugin(dataKey.KeyType, secKey)
	secKey.Destroy()
	if err != nil {
		return err
	}

	if err := m.encodeInto(dataKey, privateKey, publicKey, certificate); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "data key material imported",
		slog.String("identity", dataKey.Identity()),
	)
	return nil
}

// LoadPlugin decrypts dataKey into a SecKey that is destroyed once the plugin is built.
func (m *MemorySigningBackend) LoadPlugin(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
) (signingService.SigningPlugin, error) {
	secKey, err := m.loadSecKey(dataKey)
	if err != nil {
		return nil, err
	}
	defer secKey.Destroy()

	return signingService.NewPlugin(dataKey.KeyType, secKey)
}

func (m *MemorySigningBackend) loadSecKey(dataKey *dataKeyDomain.DataKey) (*dataKeyDomain.SecKey, error) {
	privateKey, err := m.engine.Decode(dataKey.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key of %s: %w", dataKey.Identity(), err)
	}
	publicKey, err := m.engine.Decode(dataKey.PublicKey)
	if err != nil {
		cryptoDomain.Zero(privateKey)
		return nil, fmt.Errorf("failed to decode public key of %s: %w", dataKey.Identity(), err)
	}
	certificate, err := m.engine.Decode(dataKey.Certificate)
	if err != nil {
		cryptoDomain.Zero(privateKey)
		return nil, fmt.Errorf("failed to decode certificate of %s: %w", dataKey.Identity(), err)
	}

	return dataKeyDomain.NewSecKey(dataKey.Identity(), privateKey, publicKey, certificate), nil
}

func (m *MemorySigningBackend) encodeInto(
	dataKey *dataKeyDomain.DataKey,
	privateKey, publicKey, certificate []byte,
) error {
	encPrivate, err := m.engine.Encode(privateKey)
	if err != nil {
		return err
	}
	encPublic, err := m.engine.Encode(publicKey)
	if err != nil {
		return err
	}
	encCertificate, err := m.engine.Encode(certificate)
	if err != nil {
		return err
	}

	dataKey.PrivateKey = encPrivate
	dataKey.PublicKey = encPublic
	dataKey.Certificate = encCertificate
	return nil
}
