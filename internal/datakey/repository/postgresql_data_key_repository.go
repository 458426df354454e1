// Package repository implements data key persistence for PostgreSQL and MySQL.
//
// Key material columns only ever receive ciphertext produced by the encryption engine.
// Deletion is logical: soft deleted rows are invisible to every read.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/signatrust/internal/database"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

const postgresUniqueViolation = "23505"

const postgresDataKeyColumns = `id, name, description, user_name, email, attributes, key_type,
			  private_key, public_key, certificate, created_at, expire_at, key_state, soft_delete`

// PostgreSQLDataKeyRepository implements data key persistence for PostgreSQL.
type PostgreSQLDataKeyRepository struct {
	db *sql.DB
}

// Create inserts a new data key. A live key with the same name yields ErrDataKeyAlreadyExists.
func (p *PostgreSQLDataKeyRepository) Create(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	attributes, err := json.Marshal(dataKey.Attributes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal data key attributes")
	}

	query := `INSERT INTO data_keys (` + postgresDataKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = querier.ExecContext(
		ctx,
		query,
		dataKey.ID,
		dataKey.Name,
		dataKey.Description,
		dataKey.User,
		dataKey.Email,
		string(attributes),
		dataKey.KeyType,
		dataKey.PrivateKey,
		dataKey.PublicKey,
		dataKey.Certificate,
		dataKey.CreatedAt,
		dataKey.ExpireAt,
		dataKey.KeyState,
		dataKey.SoftDelete,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == postgresUniqueViolation {
			return nil, dataKeyDomain.ErrDataKeyAlreadyExists
		}
		return nil, database.WrapError(err, "failed to create data key", nil)
	}
	return dataKey, nil
}

// GetAll returns every data key that is not soft deleted, newest first.
func (p *PostgreSQLDataKeyRepository) GetAll(ctx context.Context) ([]*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDataKeyColumns + `
			  FROM data_keys
			  WHERE soft_delete = false
			  ORDER BY created_at DESC, id DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, database.WrapError(err, "failed to list data keys", nil)
	}
	defer func() {
		_ = rows.Close()
	}()

	dataKeys := make([]*dataKeyDomain.DataKey, 0)
	for rows.Next() {
		dataKey, err := scanDataKey(rows, nil)
		if err != nil {
			return nil, err
		}
		dataKeys = append(dataKeys, dataKey)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapError(err, "failed to iterate data keys", nil)
	}
	return dataKeys, nil
}

// GetByID returns a live data key by id.
func (p *PostgreSQLDataKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDataKeyColumns + `
			  FROM data_keys
			  WHERE id = $1 AND soft_delete = false`

	return scanDataKey(querier.QueryRowContext(ctx, query, id), nil)
}

// GetByName returns a live data key by name.
func (p *PostgreSQLDataKeyRepository) GetByName(ctx context.Context, name string) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDataKeyColumns + `
			  FROM data_keys
			  WHERE name = $1 AND soft_delete = false`

	return scanDataKey(querier.QueryRowContext(ctx, query, name), nil)
}

// GetEnabledKeyByTypeAndName returns the live, enabled key of keyType called name.
// Disabled and soft deleted keys yield ErrDataKeyNotFound.
func (p *PostgreSQLDataKeyRepository) GetEnabledKeyByTypeAndName(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDataKeyColumns + `
			  FROM data_keys
			  WHERE key_type = $1 AND name = $2 AND key_state = $3 AND soft_delete = false`

	return scanDataKey(querier.QueryRowContext(ctx, query, keyType, name, dataKeyDomain.KeyStateEnabled), nil)
}

// UpdateState changes the state of a live data key.
func (p *PostgreSQLDataKeyRepository) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state dataKeyDomain.KeyState,
) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE data_keys SET key_state = $1 WHERE id = $2 AND soft_delete = false`,
		state,
		id,
	)
	return checkAffected(result, err, "failed to update data key state")
}

// DeleteByID soft deletes a data key.
func (p *PostgreSQLDataKeyRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE data_keys SET soft_delete = true WHERE id = $1 AND soft_delete = false`,
		id,
	)
	return checkAffected(result, err, "failed to delete data key")
}

// NewPostgreSQLDataKeyRepository creates a new PostgreSQL data key repository.
func NewPostgreSQLDataKeyRepository(db *sql.DB) *PostgreSQLDataKeyRepository {
	return &PostgreSQLDataKeyRepository{db: db}
}
