package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestDummyKMSProvider(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	provider := NewDummyKMSProvider(logger)
	ctx := context.Background()

	encoded, err := provider.Encode(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", encoded)

	decoded, err := provider.Decode(ctx, encoded)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", decoded)

	assert.Equal(t, 2, bytes.Count(logs.Bytes(), []byte("please don't use it in production")))
	assert.NoError(t, provider.Close())
}

func TestKeeperKMSProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RoundTrip", func(t *testing.T) {
		provider, err := NewKeeperKMSProvider(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Close())
		}()

		plaintext := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
		encoded, err := provider.Encode(ctx, plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encoded)

		decoded, err := provider.Decode(ctx, encoded)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decoded)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		provider, err := NewKeeperKMSProvider(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() { _ = provider.Close() }()

		other, err := NewKeeperKMSProvider(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() { _ = other.Close() }()

		encoded, err := provider.Encode(ctx, "secret")
		require.NoError(t, err)

		_, err = other.Decode(ctx, encoded)
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSInvoke)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("Error_MalformedCiphertext", func(t *testing.T) {
		provider, err := NewKeeperKMSProvider(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() { _ = provider.Close() }()

		_, err = provider.Decode(ctx, "%%%not-base64")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSInvoke)
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		_, err := NewKeeperKMSProvider(ctx, "invalid://uri")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSInvoke)
	})

	t.Run("Error_EmptyURI", func(t *testing.T) {
		_, err := NewKeeperKMSProvider(ctx, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSConfig)
	})
}

func TestNewKMSProvider(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("Success_Dummy", func(t *testing.T) {
		provider, err := NewKMSProvider(ctx, "dummy", "", logger)
		require.NoError(t, err)
		_, ok := provider.(*DummyKMSProvider)
		assert.True(t, ok)
	})

	t.Run("Success_LocalSecretsAlias", func(t *testing.T) {
		provider, err := NewKMSProvider(ctx, "localsecrets", generateLocalSecretsURI(t), logger)
		require.NoError(t, err)
		defer func() { _ = provider.Close() }()
		_, ok := provider.(*KeeperKMSProvider)
		assert.True(t, ok)
	})

	t.Run("Success_GoCloud", func(t *testing.T) {
		provider, err := NewKMSProvider(ctx, "gocloud", generateLocalSecretsURI(t), logger)
		require.NoError(t, err)
		assert.NoError(t, provider.Close())
	})

	t.Run("Error_SchemeMismatch", func(t *testing.T) {
		_, err := NewKMSProvider(ctx, "awskms", generateLocalSecretsURI(t), logger)
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSConfig)
	})

	t.Run("Error_UnsupportedProvider", func(t *testing.T) {
		_, err := NewKMSProvider(ctx, "huaweicloud", "", logger)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedKMSProvider)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
