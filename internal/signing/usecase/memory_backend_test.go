package usecase

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	"github.com/allisson/signatrust/internal/metrics"
	signingService "github.com/allisson/signatrust/internal/signing/service"
	"github.com/allisson/signatrust/internal/testutil"
)

func newDataKey(keyType dataKeyDomain.KeyType, name, email string, attributes map[string]string) *dataKeyDomain.DataKey {
	now := time.Now().UTC()
	return dataKeyDomain.NewDataKey(name, "", "admin", email, keyType, attributes, now, now.AddDate(1, 0, 0))
}

func newBackend(t *testing.T) *MemorySigningBackend {
	return NewMemorySigningBackend(testutil.NewInitializedEngine(t), testutil.DiscardLogger())
}

func TestNewSigningBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MemoryInitializesEngine", func(t *testing.T) {
		engine := testutil.NewEngine(t)
		_, _, ok := engine.ActiveKey()
		require.False(t, ok)

		backend, err := NewSigningBackend(ctx, BackendMemory, engine, testutil.DiscardLogger())
		require.NoError(t, err)
		assert.NotNil(t, backend)

		_, _, ok = engine.ActiveKey()
		assert.True(t, ok)
	})

	t.Run("Error_UnsupportedBackend", func(t *testing.T) {
		_, err := NewSigningBackend(ctx, "hsm", testutil.NewEngine(t), testutil.DiscardLogger())
		assert.ErrorIs(t, err, dataKeyDomain.ErrUnsupportedType)
	})
}

// Generate an OpenPGP key, sign "hello world" detached and verify with the generated public key.
func TestMemorySigningBackend_OpenPGPEndToEnd(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	dataKey := newDataKey(dataKeyDomain.KeyTypeOpenPGP, "openEuler", "contact@openeuler.org", map[string]string{
		"name":  "openEuler",
		"email": "contact@openeuler.org",
	})
	require.NoError(t, backend.GenerateKeys(ctx, dataKey))
	assert.NotContains(t, string(dataKey.PrivateKey), "PGP PRIVATE KEY")
	assert.NotContains(t, string(dataKey.PublicKey), "PGP PUBLIC KEY")

	signature, err := backend.Sign(ctx, dataKey, []byte("hello world"), map[string]string{"detached": "true"})
	require.NoError(t, err)

	exported := *dataKey
	require.NoError(t, backend.DecodePublicKeys(ctx, &exported))

	keyRing, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(exported.PublicKey))
	require.NoError(t, err)
	_, err = openpgp.CheckArmoredDetachedSignature(
		keyRing, bytes.NewReader([]byte("hello world")), bytes.NewReader(signature), nil,
	)
	assert.NoError(t, err)
}

// Export an X.509 key: public key and certificate decode, the private key stays opaque.
func TestMemorySigningBackend_X509DecodePublicKeys(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	dataKey := newDataKey(dataKeyDomain.KeyTypeX509, "x509-key", "contact@openeuler.org", nil)
	require.NoError(t, backend.GenerateKeys(ctx, dataKey))
	encryptedPrivate := bytes.Clone(dataKey.PrivateKey)

	require.NoError(t, backend.DecodePublicKeys(ctx, dataKey))

	assert.Equal(t, encryptedPrivate, dataKey.PrivateKey)
	block, _ := pem.Decode(dataKey.PrivateKey)
	assert.Nil(t, block)

	publicBlock, _ := pem.Decode(dataKey.PublicKey)
	require.NotNil(t, publicBlock)
	_, err := x509.ParsePKIXPublicKey(publicBlock.Bytes)
	require.NoError(t, err)

	certBlock, _ := pem.Decode(dataKey.Certificate)
	require.NotNil(t, certBlock)
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "x509-key", cert.Subject.CommonName)
}

func TestMemorySigningBackend_Sign(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	dataKey := newDataKey(dataKeyDomain.KeyTypeX509, "x509-key", "", nil)
	require.NoError(t, backend.GenerateKeys(ctx, dataKey))

	t.Run("Success_Detached", func(t *testing.T) {
		signature, err := backend.Sign(ctx, dataKey, []byte("payload"), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, signature)
	})

	t.Run("Error_ParameterNotRetried", func(t *testing.T) {
		_, err := backend.Sign(ctx, dataKey, []byte("payload"), map[string]string{"detached": "false"})
		assert.ErrorIs(t, err, dataKeyDomain.ErrParameter)
	})

	t.Run("Error_CorruptCiphertext", func(t *testing.T) {
		corrupted := *dataKey
		corrupted.PrivateKey = bytes.Clone(dataKey.PrivateKey)
		corrupted.PrivateKey[len(corrupted.PrivateKey)-1] ^= 0xff

		_, err := backend.Sign(ctx, &corrupted, []byte("payload"), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncode)
	})

	t.Run("Error_ForeignEngine", func(t *testing.T) {
		other := newBackend(t)
		_, err := other.Sign(ctx, dataKey, []byte("payload"), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncode)
	})
}

func TestMemorySigningBackend_GenerateKeysErrors(t *testing.T) {
	backend := newBackend(t)

	dataKey := newDataKey(dataKeyDomain.KeyTypeOpenPGP, "no-email", "", nil)
	err := backend.GenerateKeys(context.Background(), dataKey)
	assert.ErrorIs(t, err, dataKeyDomain.ErrParameter)
	assert.Empty(t, dataKey.PrivateKey)
}

func TestMemorySigningBackend_ImportKeys(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	privateKey, publicKey, certificate, err := signingService.GenerateX509Keys(map[string]string{"name": "imported"})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		dataKey := newDataKey(dataKeyDomain.KeyTypeX509, "imported", "", nil)
		require.NoError(t, backend.ImportKeys(ctx, dataKey, privateKey, publicKey, certificate))
		assert.NotEqual(t, privateKey, dataKey.PrivateKey)

		signature, err := backend.Sign(ctx, dataKey, []byte("payload"), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, signature)

		require.NoError(t, backend.DecodePublicKeys(ctx, dataKey))
		assert.Equal(t, certificate, dataKey.Certificate)
	})

	t.Run("Error_WrongKeyType", func(t *testing.T) {
		dataKey := newDataKey(dataKeyDomain.KeyTypeOpenPGP, "imported", "", nil)
		err := backend.ImportKeys(ctx, dataKey, privateKey, publicKey, certificate)
		assert.ErrorIs(t, err, dataKeyDomain.ErrKeyParse)
		assert.Empty(t, dataKey.PrivateKey)
	})
}

func TestSigningBackendWithMetrics(t *testing.T) {
	ctx := context.Background()
	backend := NewSigningBackendWithMetrics(newBackend(t), metrics.NewNoOpBusinessMetrics())

	dataKey := newDataKey(dataKeyDomain.KeyTypeX509, "metered", "", nil)
	require.NoError(t, backend.GenerateKeys(ctx, dataKey))

	plugin, err := backend.LoadPlugin(ctx, dataKey)
	require.NoError(t, err)
	_, err = plugin.Sign([]byte("payload"), nil)
	require.NoError(t, err)

	_, err = backend.Sign(ctx, dataKey, []byte("payload"), map[string]string{"detached": "no"})
	assert.ErrorIs(t, err, dataKeyDomain.ErrParameter)

	require.NoError(t, backend.DecodePublicKeys(ctx, dataKey))
	assert.Error(t, backend.ImportKeys(ctx, dataKey, []byte("x"), nil, nil))
}
