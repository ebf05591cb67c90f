package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Sealer encrypts token values before they touch disk. The key is derived
// from a locally configured passphrase; this protects against casual reads
// of the session database, not against an attacker who also has the
// passphrase.
type Sealer struct {
	aead cipher.AEAD
}

// sealSalt is a fixed application salt. The passphrase is operator-local
// configuration, not a per-user secret, so a stored random salt buys nothing.
var sealSalt = []byte("eventhub-admin-console.session.v1")

func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealer passphrase must not be empty")
	}

	key, err := scrypt.Key([]byte(passphrase), sealSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts plain and prepends the nonce to the ciphertext.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("sealed value too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return plain, nil
}
