package domain

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// DataKey is a stored signing identity. PrivateKey, PublicKey and Certificate always hold
// ciphertext produced by the encryption engine except after DecodePublicKeys, which
// replaces PublicKey and Certificate with plaintext for export.
type DataKey struct {
	ID          uuid.UUID
	Name        string
	Description string
	User        string
	Email       string

	// Attributes carries the plugin generation parameters merged with name, email,
	// create_at and expire_at.
	Attributes map[string]string

	KeyType     KeyType
	PrivateKey  []byte
	PublicKey   []byte
	Certificate []byte
	CreatedAt   time.Time
	ExpireAt    time.Time
	KeyState    KeyState
	SoftDelete  bool
}

// NewDataKey creates an enabled data key without key material. Attributes are copied and
// gain the name, email, create_at and expire_at entries.
func NewDataKey(
	name, description, user, email string,
	keyType KeyType,
	attributes map[string]string,
	createdAt, expireAt time.Time,
) *DataKey {
	merged := make(map[string]string, len(attributes)+4)
	maps.Copy(merged, attributes)
	merged[AttributeName] = name
	merged[AttributeEmail] = email
	merged[AttributeCreateAt] = createdAt.UTC().Format(time.RFC3339)
	merged[AttributeExpireAt] = expireAt.UTC().Format(time.RFC3339)

	return &DataKey{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		User:        user,
		Email:       email,
		Attributes:  merged,
		KeyType:     keyType,
		CreatedAt:   createdAt.UTC(),
		ExpireAt:    expireAt.UTC(),
		KeyState:    KeyStateEnabled,
	}
}

// Identity is the human readable label used in logs and sign errors.
func (d *DataKey) Identity() string {
	return fmt.Sprintf("<ID:%s,Email:%s,User:%s,Type:%s>", d.ID, d.Email, d.User, d.KeyType)
}

// IsEnabled reports whether the key may be used for signing.
func (d *DataKey) IsEnabled() bool {
	return d.KeyState == KeyStateEnabled && !d.SoftDelete
}

// CacheKey returns the "{key_type}-{key_name}" lookup key for signer caches.
func CacheKey(keyType KeyType, name string) string {
	return fmt.Sprintf("%s-%s", keyType, name)
}

// ExportKey is the exportable part of a data key. The private key is never exported.
type ExportKey struct {
	PublicKey   string
	Certificate string
}

// NewExportKey builds an ExportKey from a data key whose public material was decoded.
func NewExportKey(dataKey *DataKey) *ExportKey {
	return &ExportKey{
		PublicKey:   string(dataKey.PublicKey),
		Certificate: string(dataKey.Certificate),
	}
}
