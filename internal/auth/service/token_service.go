package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/signatrust/internal/errors"
)

// TokenPrefix marks generated admin tokens so they are easy to spot in
// configuration and secret scanners.
const TokenPrefix = "sgt_"

const tokenEntropyBytes = 32

type argon2TokenService struct {
	hasher *pwdhash.PasswordHasher
}

// NewTokenService returns a TokenService backed by Argon2id with the moderate policy.
func NewTokenService() TokenService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		panic(err)
	}
	return &argon2TokenService{hasher: hasher}
}

func (s *argon2TokenService) GenerateToken() (string, string, error) {
	entropy := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(entropy); err != nil {
		return "", "", apperrors.Wrap(err, "failed to read token entropy")
	}

	plainToken := TokenPrefix + base64.RawURLEncoding.EncodeToString(entropy)
	tokenHash, err := s.HashToken(plainToken)
	if err != nil {
		return "", "", err
	}
	return plainToken, tokenHash, nil
}

func (s *argon2TokenService) HashToken(plainToken string) (string, error) {
	if strings.TrimSpace(plainToken) == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "token is empty")
	}
	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash token")
	}
	return tokenHash, nil
}

// CompareToken treats a malformed hash as a mismatch.
func (s *argon2TokenService) CompareToken(plainToken string, tokenHash string) bool {
	if plainToken == "" || tokenHash == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(plainToken), tokenHash)
	return err == nil && ok
}
