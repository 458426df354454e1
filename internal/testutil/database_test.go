package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
)

func TestGetTestDSN(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "postgres://custom")
	t.Setenv("TEST_MYSQL_DSN", "")

	assert.Equal(t, "postgres://custom", GetPostgresTestDSN())
	assert.Equal(t, mysqlTestDatabase.defaultDSN, GetMySQLTestDSN())
}

func TestSetupPostgresDB(t *testing.T) {
	db := SetupPostgresDB(t)
	defer TeardownDB(t, db)

	for _, table := range tables {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count)
	}
}

func TestSetupMySQLDB(t *testing.T) {
	db := SetupMySQLDB(t)
	defer TeardownDB(t, db)

	for _, table := range tables {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count)
	}
}

func TestMemoryClusterKeyRepository(t *testing.T) {
	ctx := context.Background()
	repo := &MemoryClusterKeyRepository{}

	_, err := repo.GetLatest(ctx, cryptoDomain.AESGCM)
	assert.ErrorIs(t, err, cryptoDomain.ErrClusterKeyNotFound)

	key := cryptoDomain.NewClusterKey([]byte("wrapped"), cryptoDomain.AESGCM, time.Now(), 1)
	require.NoError(t, repo.Create(ctx, key))

	got, err := repo.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Same(t, key, got)

	require.NoError(t, repo.DeleteByID(ctx, key.ID))
	assert.Zero(t, repo.Len())
}

func TestNewInitializedEngine(t *testing.T) {
	engine := NewInitializedEngine(t)

	encoded, err := engine.Encode([]byte("material"))
	require.NoError(t, err)
	decoded, err := engine.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("material"), decoded)
}
