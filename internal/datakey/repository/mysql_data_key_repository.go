package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/allisson/signatrust/internal/database"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

const mysqlDuplicateEntry = 1062

const mysqlDataKeyColumns = `id, name, description, user_name, email, attributes, key_type,
			  private_key, public_key, certificate, created_at, expire_at, key_state, soft_delete`

// MySQLDataKeyRepository implements data key persistence for MySQL.
// UUIDs are stored as BINARY(16), key material as BLOB and attributes as JSON.
type MySQLDataKeyRepository struct {
	db *sql.DB
}

// Create inserts a new data key.
func (m *MySQLDataKeyRepository) Create(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := dataKey.ID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal data key id")
	}

	attributes, err := json.Marshal(dataKey.Attributes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal data key attributes")
	}

	query := `INSERT INTO data_keys (` + mysqlDataKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, dataKeyDomain.ErrDataKeyAlreadyExists
		}
		return nil, database.WrapError(err, "failed to create data key", nil)
	}
	return dataKey, nil
}

// GetAll returns every data key that is not soft deleted, newest first.
func (m *MySQLDataKeyRepository) GetAll(ctx context.Context) ([]*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDataKeyColumns + `
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
		dataKey, err := scanDataKey(rows, unmarshalBinaryID)
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
func (m *MySQLDataKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal data key id")
	}

	query := `SELECT ` + mysqlDataKeyColumns + `
			  FROM data_keys
			  WHERE id = ? AND soft_delete = false`

	return scanDataKey(querier.QueryRowContext(ctx, query, binID), unmarshalBinaryID)
}

// GetByName returns a live data key by name.
func (m *MySQLDataKeyRepository) GetByName(ctx context.Context, name string) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDataKeyColumns + `
			  FROM data_keys
			  WHERE name = ? AND soft_delete = false`

	return scanDataKey(querier.QueryRowContext(ctx, query, name), unmarshalBinaryID)
}

// GetEnabledKeyByTypeAndName returns the live, enabled key of keyType called name.
func (m *MySQLDataKeyRepository) GetEnabledKeyByTypeAndName(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
) (*dataKeyDomain.DataKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDataKeyColumns + `
			  FROM data_keys
			  WHERE key_type = ? AND name = ? AND key_state = ? AND soft_delete = false`

	return scanDataKey(
		querier.QueryRowContext(ctx, query, keyType, name, dataKeyDomain.KeyStateEnabled),
		unmarshalBinaryID,
	)
}

// UpdateState changes the state of a live data key.
func (m *MySQLDataKeyRepository) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state dataKeyDomain.KeyState,
) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal data key id")
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE data_keys SET key_state = ? WHERE id = ? AND soft_delete = false`,
		state,
		binID,
	)
	return checkAffected(result, err, "failed to update data key state")
}

// DeleteByID soft deletes a data key.
func (m *MySQLDataKeyRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal data key id")
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE data_keys SET soft_delete = true WHERE id = ? AND soft_delete = false`,
		binID,
	)
	return checkAffected(result, err, "failed to delete data key")
}

func unmarshalBinaryID(raw []byte, dataKey *dataKeyDomain.DataKey) error {
	if err := dataKey.ID.UnmarshalBinary(raw); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal data key id")
	}
	return nil
}

// NewMySQLDataKeyRepository creates a new MySQL data key repository.
func NewMySQLDataKeyRepository(db *sql.DB) *MySQLDataKeyRepository {
	return &MySQLDataKeyRepository{db: db}
}
