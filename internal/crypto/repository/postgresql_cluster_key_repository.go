// Package repository implements persistence of cluster keys for PostgreSQL and MySQL.
//
// Only the KMS-wrapped form of a cluster key is ever stored. Repositories are transaction
// aware through database.GetTx, so the engine can create and read back a key atomically.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	"github.com/allisson/signatrust/internal/database"
)

// PostgreSQLClusterKeyRepository implements cluster key persistence for PostgreSQL.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - data: BYTEA (KMS ciphertext)
//   - algorithm: VARCHAR
//   - identity: VARCHAR
//   - created_at, expire_at: TIMESTAMP WITH TIME ZONE
type PostgreSQLClusterKeyRepository struct {
	db *sql.DB
}

// Create inserts a new cluster key.
func (p *PostgreSQLClusterKeyRepository) Create(ctx context.Context, clusterKey *cryptoDomain.ClusterKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO cluster_keys (id, data, algorithm, identity, created_at, expire_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		clusterKey.ID,
		clusterKey.Data,
		clusterKey.Algorithm,
		clusterKey.Identity,
		clusterKey.CreatedAt,
		clusterKey.ExpireAt,
	)
	return database.WrapError(err, "failed to create cluster key", nil)
}

// GetLatest returns the most recently created cluster key for alg.
// Returns ErrClusterKeyNotFound when none exists.
func (p *PostgreSQLClusterKeyRepository) GetLatest(
	ctx context.Context,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.ClusterKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, data, algorithm, identity, created_at, expire_at
			  FROM cluster_keys
			  WHERE algorithm = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	var clusterKey cryptoDomain.ClusterKey
	err := querier.QueryRowContext(ctx, query, alg).Scan(
		&clusterKey.ID,
		&clusterKey.Data,
		&clusterKey.Algorithm,
		&clusterKey.Identity,
		&clusterKey.CreatedAt,
		&clusterKey.ExpireAt,
	)
	if err != nil {
		return nil, database.WrapError(err, "failed to get latest cluster key", cryptoDomain.ErrClusterKeyNotFound)
	}
	return &clusterKey, nil
}

// GetByID returns the cluster key with the given id.
func (p *PostgreSQLClusterKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*cryptoDomain.ClusterKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, data, algorithm, identity, created_at, expire_at
			  FROM cluster_keys WHERE id = $1`

	var clusterKey cryptoDomain.ClusterKey
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&clusterKey.ID,
		&clusterKey.Data,
		&clusterKey.Algorithm,
		&clusterKey.Identity,
		&clusterKey.CreatedAt,
		&clusterKey.ExpireAt,
	)
	if err != nil {
		return nil, database.WrapError(err, "failed to get cluster key", cryptoDomain.ErrClusterKeyNotFound)
	}
	return &clusterKey, nil
}

// DeleteByID removes a cluster key. Deleting a missing key is not an error.
func (p *PostgreSQLClusterKeyRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM cluster_keys WHERE id = $1`, id)
	return database.WrapError(err, "failed to delete cluster key", nil)
}

// NewPostgreSQLClusterKeyRepository creates a new PostgreSQL cluster key repository.
func NewPostgreSQLClusterKeyRepository(db *sql.DB) *PostgreSQLClusterKeyRepository {
	return &PostgreSQLClusterKeyRepository{db: db}
}
