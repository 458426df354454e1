package domain

import (
	"fmt"

	"github.com/allisson/signatrust/internal/errors"
)

var (
	// ErrDataKeyNotFound indicates the data key was not found.
	ErrDataKeyNotFound = errors.Wrap(errors.ErrNotFound, "data key not found")

	// ErrDataKeyAlreadyExists indicates a data key with the same name already exists.
	ErrDataKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "data key already exists")

	// ErrDataKeyDisabled indicates the data key is not enabled for signing.
	ErrDataKeyDisabled = errors.Wrap(errors.ErrInvalidInput, "data key is disabled")

	// ErrUnsupportedType indicates an unknown key type, key state or backend type.
	ErrUnsupportedType = errors.Wrap(errors.ErrInvalidInput, "unsupported type")

	// ErrKeyParse indicates decrypted key material does not parse for its key type.
	ErrKeyParse = errors.Wrap(errors.ErrInvalidInput, "failed to parse key")

	// ErrParameter indicates an invalid key generation parameter or sign option.
	ErrParameter = errors.Wrap(errors.ErrInvalidInput, "invalid parameter")

	// ErrSign is the sentinel every SignError unwraps to.
	ErrSign = errors.New("sign error")
)

// SignError reports a plugin failure while signing with a specific key.
type SignError struct {
	Identity string
	Detail   string
}

// NewSignError creates a SignError for the key identity.
func NewSignError(identity string, detail error) *SignError {
	return &SignError{Identity: identity, Detail: detail.Error()}
}

func (e *SignError) Error() string {
	return fmt.Sprintf("failed to sign with key %s. %s", e.Identity, e.Detail)
}

// Unwrap allows errors.Is(err, ErrSign).
func (e *SignError) Unwrap() error {
	return ErrSign
}
