// Package service implements the signing plugins. Each key type has a generator that
// turns textual parameters into fresh key material and a plugin that signs content with
// decrypted material.
package service

import (
	"crypto"
	"fmt"
	"strconv"
	"time"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
)

// Plugin parameter and option names shared by every key type.
const (
	ParamKeyType         = "key_type"
	ParamKeyLength       = "key_length"
	ParamDigestAlgorithm = "digest_algorithm"

	OptionDetached = "detached"
	OptionArmored  = "armored"
)

// SigningPlugin signs content with key material that has already been decrypted.
// Sign performs no I/O.
type SigningPlugin interface {
	Sign(content []byte, options map[string]string) ([]byte, error)
}

// GenerateKeys creates private key, public key and certificate for keyType. The
// certificate is empty for key types that do not use one.
func GenerateKeys(keyType dataKeyDomain.KeyType, params map[string]string) ([]byte, []byte, []byte, error) {
	switch keyType {
	case dataKeyDomain.KeyTypeOpenPGP:
		return GenerateOpenPGPKeys(params)
	case dataKeyDomain.KeyTypeX509:
		return GenerateX509Keys(params)
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q data key type", dataKeyDomain.ErrUnsupportedType, keyType)
	}
}

// NewPlugin builds a ready-to-sign plugin from decrypted key material. Malformed material
// yields ErrKeyParse. The plugin does not retain secKey, which may be destroyed afterwards.
func NewPlugin(keyType dataKeyDomain.KeyType, secKey *dataKeyDomain.SecKey) (SigningPlugin, error) {
	switch keyType {
	case dataKeyDomain.KeyTypeOpenPGP:
		return NewOpenPGPPlugin(secKey)
	case dataKeyDomain.KeyTypeX509:
		return NewX509Plugin(secKey)
	default:
		return nil, fmt.Errorf("%w: %q data key type", dataKeyDomain.ErrUnsupportedType, keyType)
	}
}

var digestAlgorithms = map[string]crypto.Hash{
	"sha2_256": crypto.SHA256,
	"sha2_384": crypto.SHA384,
	"sha2_512": crypto.SHA512,
}

func parseDigest(values map[string]string) (crypto.Hash, error) {
	name := values[ParamDigestAlgorithm]
	if name == "" {
		return crypto.SHA256, nil
	}
	hash, ok := digestAlgorithms[name]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported digest algorithm %q", dataKeyDomain.ErrParameter, name)
	}
	return hash, nil
}

func parseChoice(values map[string]string, key, fallback string, allowed ...string) (string, error) {
	value := values[key]
	if value == "" {
		return fallback, nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %v, got %q", dataKeyDomain.ErrParameter, key, allowed, value)
}

func parseBool(values map[string]string, key string, fallback bool) (bool, error) {
	value := values[key]
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", dataKeyDomain.ErrParameter, key, value)
	}
	return parsed, nil
}

func parseKeyLength(values map[string]string, fallback int, allowed ...int) (int, error) {
	value := values[ParamKeyLength]
	if value == "" {
		return fallback, nil
	}
	length, err := strconv.Atoi(value)
	if err == nil {
		for _, candidate := range allowed {
			if length == candidate {
				return length, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: key_length must be one of %v, got %q", dataKeyDomain.ErrParameter, allowed, value)
}

// parseTime reads an optional RFC3339 timestamp. ok is false when the value is absent.
func parseTime(values map[string]string, key string) (time.Time, bool, error) {
	value := values[key]
	if value == "" {
		return time.Time{}, false, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s must be an RFC3339 timestamp, got %q",
			dataKeyDomain.ErrParameter, key, value)
	}
	return parsed.UTC(), true, nil
}
