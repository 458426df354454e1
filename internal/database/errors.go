package database

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/allisson/signatrust/internal/errors"
)

// ErrDatabase marks failures propagated from the persistence layer.
var ErrDatabase = apperrors.Wrap(apperrors.ErrUnavailable, "database error")

// WrapError tags err as a database failure and adds context. sql.ErrNoRows is translated
// into notFound so repositories can surface their own domain error.
func WrapError(err error, message string, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w: %w", message, ErrDatabase, err)
}
