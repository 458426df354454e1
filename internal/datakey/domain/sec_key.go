package domain

import (
	"encoding/json"

	"github.com/awnumar/memguard"
)

// SecKey holds decrypted key material in guarded memory for the duration of a single
// sign or import operation. It must be destroyed right after use.
type SecKey struct {
	identity    string
	private     *memguard.LockedBuffer
	public      *memguard.LockedBuffer
	certificate *memguard.LockedBuffer
}

// NewSecKey moves the given material into locked buffers. The source slices are wiped.
func NewSecKey(identity string, privateKey, publicKey, certificate []byte) *SecKey {
	return &SecKey{
		identity:    identity,
		private:     memguard.NewBufferFromBytes(privateKey),
		public:      memguard.NewBufferFromBytes(publicKey),
		certificate: memguard.NewBufferFromBytes(certificate),
	}
}

// Identity returns the identity of the data key the material belongs to.
func (s *SecKey) Identity() string {
	return s.identity
}

// PrivateKey returns the guarded private key bytes. The slice is invalid after Destroy.
func (s *SecKey) PrivateKey() []byte {
	return s.private.Bytes()
}

// PublicKey returns the guarded public key bytes. The slice is invalid after Destroy.
func (s *SecKey) PublicKey() []byte {
	return s.public.Bytes()
}

// Certificate returns the guarded certificate bytes. The slice is invalid after Destroy.
func (s *SecKey) Certificate() []byte {
	return s.certificate.Bytes()
}

// Destroy scrubs and releases all buffers. Safe to call more than once.
func (s *SecKey) Destroy() {
	if s == nil {
		return
	}
	s.private.Destroy()
	s.public.Destroy()
	s.certificate.Destroy()
}

func (s *SecKey) String() string {
	return "identity: " + s.identity + ", private_key: ******, public_key: ******, certificate: ******"
}

func (s *SecKey) GoString() string {
	return s.String()
}

// MarshalJSON never serializes key material.
func (s *SecKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"identity":    s.identity,
		"private_key": "******",
		"public_key":  "******",
		"certificate": "******",
	})
}
