// Package dto provides data transfer objects for the data key control plane.
package dto

import (
	"encoding/base64"
	"errors"
	"time"

	validation "github.com/jellydator/validation"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
	customValidation "github.com/allisson/signatrust/internal/validation"
)

// CreateDataKeyRequest contains the parameters for generating a data key.
// Attributes are passed to the signing plugin as generation parameters.
type CreateDataKeyRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Email       string            `json:"email"`
	KeyType     string            `json:"key_type"` // "openpgp" or "x509"
	Attributes  map[string]string `json:"attributes"`
	CreateAt    string            `json:"create_at"` // RFC 3339
	ExpireAt    string            `json:"expire_at"` // RFC 3339
}

// Validate checks if the create data key request is valid.
func (r *CreateDataKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(4, 20),
			customValidation.KeyName,
		),
		validation.Field(&r.Description, validation.Length(0, 100)),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.KeyType,
			validation.Required,
			validation.In(dataKeyDomain.KeyTypeOpenPGP.String(), dataKeyDomain.KeyTypeX509.String()),
		),
		validation.Field(&r.CreateAt, validation.Required, customValidation.RFC3339),
		validation.Field(&r.ExpireAt,
			validation.Required,
			customValidation.RFC3339,
			validation.By(r.expireAfterCreate),
		),
	)
}

func (r *CreateDataKeyRequest) expireAfterCreate(_ any) error {
	createAt, err := time.Parse(time.RFC3339, r.CreateAt)
	if err != nil {
		return nil
	}
	expireAt, err := time.Parse(time.RFC3339, r.ExpireAt)
	if err != nil {
		return nil
	}
	if !expireAt.After(createAt) {
		return errors.New("must be after create_at")
	}
	return nil
}

// ToInput converts a validated request into use case input for user.
func (r *CreateDataKeyRequest) ToInput(user string) (dataKeyUseCase.CreateInput, error) {
	keyType, err := dataKeyDomain.ParseKeyType(r.KeyType)
	if err != nil {
		return dataKeyUseCase.CreateInput{}, err
	}
	createAt, err := time.Parse(time.RFC3339, r.CreateAt)
	if err != nil {
		return dataKeyUseCase.CreateInput{}, err
	}
	expireAt, err := time.Parse(time.RFC3339, r.ExpireAt)
	if err != nil {
		return dataKeyUseCase.CreateInput{}, err
	}

	attributes := r.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}

	return dataKeyUseCase.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		User:        user,
		Email:       r.Email,
		KeyType:     keyType,
		Attributes:  attributes,
		CreateAt:    createAt.UTC(),
		ExpireAt:    expireAt.UTC(),
	}, nil
}

// ImportDataKeyRequest carries externally generated key material, base64 encoded.
type ImportDataKeyRequest struct {
	CreateDataKeyRequest
	PrivateKey  string `json:"private_key"`
	PublicKey   string `json:"public_key"`
	Certificate string `json:"certificate"`
}

// Validate checks if the import data key request is valid.
func (r *ImportDataKeyRequest) Validate() error {
	if err := r.CreateDataKeyRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.PrivateKey, validation.Required, customValidation.Base64),
		validation.Field(&r.PublicKey, validation.Required, customValidation.Base64),
		validation.Field(&r.Certificate, customValidation.Base64),
	)
}

// ToInput converts a validated request into use case input for user.
func (r *ImportDataKeyRequest) ToInput(user string) (dataKeyUseCase.ImportInput, error) {
	createInput, err := r.CreateDataKeyRequest.ToInput(user)
	if err != nil {
		return dataKeyUseCase.ImportInput{}, err
	}

	input := dataKeyUseCase.ImportInput{CreateInput: createInput}
	for _, field := range []struct {
		encoded string
		target  *[]byte
	}{
		{r.PrivateKey, &input.PrivateKey},
		{r.PublicKey, &input.PublicKey},
		{r.Certificate, &input.Certificate},
	} {
		decoded, err := base64.StdEncoding.DecodeString(field.encoded)
		if err != nil {
			return dataKeyUseCase.ImportInput{}, err
		}
		*field.target = decoded
	}
	return input, nil
}
