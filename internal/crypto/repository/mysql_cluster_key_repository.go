package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
	"github.com/allisson/signatrust/internal/database"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

// MySQLClusterKeyRepository implements cluster key persistence for MySQL.
// UUIDs are stored as BINARY(16), key data as BLOB.
type MySQLClusterKeyRepository struct {
	db *sql.DB
}

// Create inserts a new cluster key.
func (m *MySQLClusterKeyRepository) Create(ctx context.Context, clusterKey *cryptoDomain.ClusterKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clusterKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cluster key id")
	}

	query := `INSERT INTO cluster_keys (id, data, algorithm, identity, created_at, expire_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		clusterKey.Data,
		clusterKey.Algorithm,
		clusterKey.Identity,
		clusterKey.CreatedAt,
		clusterKey.ExpireAt,
	)
	return database.WrapError(err, "failed to create cluster key", nil)
}

// GetLatest returns the most recently created cluster key for alg.
func (m *MySQLClusterKeyRepository) GetLatest(
	ctx context.Context,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.ClusterKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, data, algorithm, identity, created_at, expire_at
			  FROM cluster_keys
			  WHERE algorithm = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	return m.scan(querier.QueryRowContext(ctx, query, alg), "failed to get latest cluster key")
}

// GetByID returns the cluster key with the given id.
func (m *MySQLClusterKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*cryptoDomain.ClusterKey, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cluster key id")
	}

	query := `SELECT id, data, algorithm, identity, created_at, expire_at
			  FROM cluster_keys WHERE id = ?`

	return m.scan(querier.QueryRowContext(ctx, query, binID), "failed to get cluster key")
}

// DeleteByID removes a cluster key.
func (m *MySQLClusterKeyRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cluster key id")
	}

	_, err = querier.ExecContext(ctx, `DELETE FROM cluster_keys WHERE id = ?`, binID)
	return database.WrapError(err, "failed to delete cluster key", nil)
}

func (m *MySQLClusterKeyRepository) scan(row *sql.Row, message string) (*cryptoDomain.ClusterKey, error) {
	var clusterKey cryptoDomain.ClusterKey
	var id []byte

	err := row.Scan(
		&id,
		&clusterKey.Data,
		&clusterKey.Algorithm,
		&clusterKey.Identity,
		&clusterKey.CreatedAt,
		&clusterKey.ExpireAt,
	)
	if err != nil {
		return nil, database.WrapError(err, message, cryptoDomain.ErrClusterKeyNotFound)
	}

	if err := clusterKey.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal cluster key id")
	}
	return &clusterKey, nil
}

// NewMySQLClusterKeyRepository creates a new MySQL cluster key repository.
func NewMySQLClusterKeyRepository(db *sql.DB) *MySQLClusterKeyRepository {
	return &MySQLClusterKeyRepository{db: db}
}
