// Package domain defines the signing key model: stored data keys, their decrypted
// in-memory counterpart and the errors shared by the signing core.
package domain

import (
	"fmt"
)

// KeyType selects the signing plugin a data key belongs to.
type KeyType string

const (
	KeyTypeOpenPGP KeyType = "openpgp"
	KeyTypeX509    KeyType = "x509"
)

// ParseKeyType converts a string into a KeyType.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(s) {
	case KeyTypeOpenPGP, KeyTypeX509:
		return KeyType(s), nil
	default:
		return "", fmt.Errorf("%w: %q data key type", ErrUnsupportedType, s)
	}
}

// String returns the string representation of the key type.
func (k KeyType) String() string {
	return string(k)
}

// KeyState gates whether a data key may be used for signing.
type KeyState string

const (
	KeyStateEnabled  KeyState = "enabled"
	KeyStateDisabled KeyState = "disabled"
)

// ParseKeyState converts a string into a KeyState.
func ParseKeyState(s string) (KeyState, error) {
	switch KeyState(s) {
	case KeyStateEnabled, KeyStateDisabled:
		return KeyState(s), nil
	default:
		return "", fmt.Errorf("%w: %q key state", ErrUnsupportedType, s)
	}
}

// String returns the string representation of the key state.
func (k KeyState) String() string {
	return string(k)
}

// Attribute keys merged into DataKey.Attributes on creation. Plugins read their
// generation parameters from the same map.
const (
	AttributeName     = "name"
	AttributeEmail    = "email"
	AttributeCreateAt = "create_at"
	AttributeExpireAt = "expire_at"
)
