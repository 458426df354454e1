// Package usecase implements the control plane operations on data keys: generation,
// import, listing, export of public material and state changes.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
)

// DataKeyRepository defines the persistence operations used by the control plane.
type DataKeyRepository interface {
	Create(ctx context.Context, dataKey *dataKeyDomain.DataKey) (*dataKeyDomain.DataKey, error)
	GetAll(ctx context.Context) ([]*dataKeyDomain.DataKey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error)
	GetByName(ctx context.Context, name string) (*dataKeyDomain.DataKey, error)
	UpdateState(ctx context.Context, id uuid.UUID, state dataKeyDomain.KeyState) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// SigningBackend is the part of the signing backend the control plane needs.
type SigningBackend interface {
	GenerateKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error
	DecodePublicKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error
	ImportKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey, privateKey, publicKey, certificate []byte) error
}

// CreateInput describes a data key to generate. Attributes carry the plugin parameters.
type CreateInput struct {
	Name        string
	Description string
	User        string
	Email       string
	KeyType     dataKeyDomain.KeyType
	Attributes  map[string]string
	CreateAt    time.Time
	ExpireAt    time.Time
}

// ImportInput describes externally generated key material to store.
type ImportInput struct {
	CreateInput
	PrivateKey  []byte
	PublicKey   []byte
	Certificate []byte
}

// DataKeyUseCase defines the control plane operations.
type DataKeyUseCase interface {
	List(ctx context.Context) ([]*dataKeyDomain.DataKey, error)
	Create(ctx context.Context, input CreateInput) (*dataKeyDomain.DataKey, error)
	Import(ctx context.Context, input ImportInput) (*dataKeyDomain.DataKey, error)
	Get(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Export returns the decrypted public key and certificate. The private key never leaves.
	Export(ctx context.Context, id uuid.UUID) (*dataKeyDomain.ExportKey, error)
	Enable(ctx context.Context, id uuid.UUID) error
	Disable(ctx context.Context, id uuid.UUID) error
}
