package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/signatrust/internal/crypto/domain"
)

// sealer adapts a cipher.AEAD to the engine's AEAD, drawing a fresh random nonce
// for every Encrypt. Safe for concurrent use.
type sealer struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

func (s *sealer) Encrypt(plaintext, aad []byte) ([]byte, []byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to generate nonce: %w", s.alg, err)
	}
	return s.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

func (s *sealer) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %s nonce must be %d bytes, got %d",
			cryptoDomain.ErrEncode, s.alg, s.aead.NonceSize(), len(nonce))
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cryptoDomain.ErrEncode, s.alg, err)
	}
	return plaintext, nil
}

func (s *sealer) NonceSize() int {
	return s.aead.NonceSize()
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// AEADManagerService builds ciphers for the algorithms the engine supports.
type AEADManagerService struct {
	constructors map[cryptoDomain.Algorithm]func(key []byte) (cipher.AEAD, error)
}

func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{
		constructors: map[cryptoDomain.Algorithm]func([]byte) (cipher.AEAD, error){
			cryptoDomain.AESGCM:   newAESGCM,
			cryptoDomain.ChaCha20: chacha20poly1305.New,
		},
	}
}

// CreateCipher returns ErrInvalidKeySize unless key is KeySize bytes and
// ErrUnsupportedAlgorithm for an unknown alg.
func (m *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	construct, ok := m.constructors[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, alg)
	}

	aead, err := construct(key)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create cipher: %w", alg, err)
	}
	return &sealer{alg: alg, aead: aead}, nil
}
