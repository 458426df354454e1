// Package service hashes and verifies the control plane admin token.
package service

// TokenService generates, hashes and verifies admin bearer tokens.
type TokenService interface {
	// GenerateToken returns a fresh random token together with its hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a token in PHC string format.
	HashToken(plainToken string) (tokenHash string, err error)

	// CompareToken reports whether plainToken matches tokenHash.
	CompareToken(plainToken string, tokenHash string) bool
}
