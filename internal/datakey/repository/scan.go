package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/allisson/signatrust/internal/database"
	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
)

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// idScanner decodes the id column. nil means the driver scans straight into uuid.UUID.
type idScanner func(raw []byte, dataKey *dataKeyDomain.DataKey) error

func scanDataKey(row scanner, decodeID idScanner) (*dataKeyDomain.DataKey, error) {
	var dataKey dataKeyDomain.DataKey
	var rawID, attributes []byte
	var keyType, keyState string

	var idDest any = &dataKey.ID
	if decodeID != nil {
		idDest = &rawID
	}

	err := row.Scan(
		idDest,
		&dataKey.Name,
		&dataKey.Description,
		&dataKey.User,
		&dataKey.Email,
		&attributes,
		&keyType,
		&dataKey.PrivateKey,
		&dataKey.PublicKey,
		&dataKey.Certificate,
		&dataKey.CreatedAt,
		&dataKey.ExpireAt,
		&keyState,
		&dataKey.SoftDelete,
	)
	if err != nil {
		return nil, database.WrapError(err, "failed to get data key", dataKeyDomain.ErrDataKeyNotFound)
	}

	if decodeID != nil {
		if err := decodeID(rawID, &dataKey); err != nil {
			return nil, err
		}
	}

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &dataKey.Attributes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal data key attributes")
		}
	}
	if dataKey.Attributes == nil {
		dataKey.Attributes = map[string]string{}
	}

	if dataKey.KeyType, err = dataKeyDomain.ParseKeyType(keyType); err != nil {
		return nil, err
	}
	if dataKey.KeyState, err = dataKeyDomain.ParseKeyState(keyState); err != nil {
		return nil, err
	}
	return &dataKey, nil
}

// checkAffected maps a zero row update to ErrDataKeyNotFound.
func checkAffected(result sql.Result, err error, message string) error {
	if err != nil {
		return database.WrapError(err, message, nil)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return database.WrapError(err, message, nil)
	}
	if affected == 0 {
		return dataKeyDomain.ErrDataKeyNotFound
	}
	return nil
}
