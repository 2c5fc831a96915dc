// Package sealer provides the at-rest encryption capability used by the
// cache store. The store only depends on the Sealer interface; key handling
// lives behind KeyProvider so the OS keyring can be swapped out in tests.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// KeySize is the AES-256 key size in bytes
const KeySize = 32

// Sealer encrypts and decrypts opaque payloads
type Sealer interface {
	// Seal encrypts plaintext and returns the ciphertext
	Seal(plaintext []byte) ([]byte, error)

	// Open decrypts ciphertext produced by Seal
	Open(ciphertext []byte) ([]byte, error)
}

// KeyProvider supplies the symmetric key used for sealing
type KeyProvider interface {
	// Key returns the encryption key, creating one if none exists yet
	Key() ([]byte, error)
}

// aesSealer implements Sealer using AES-256-GCM with a random nonce prefix
type aesSealer struct {
	aead cipher.AEAD
}

// NewAES creates a Sealer from the key supplied by the provider
func NewAES(provider KeyProvider) (Sealer, error) {
	key, err := provider.Key()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain encryption key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &aesSealer{aead: aead}, nil
}

// Seal encrypts plaintext, prefixing the ciphertext with the nonce
func (s *aesSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts ciphertext produced by Seal
func (s *aesSealer) Open(ciphertext []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext shorter than nonce (%d bytes)", len(ciphertext))
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return plaintext, nil
}

// passthrough is a no-op Sealer for development runs with encryption disabled
type passthrough struct{}

// NewPassthrough creates a Sealer that stores payloads unencrypted
func NewPassthrough() Sealer {
	return passthrough{}
}

func (passthrough) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }

func (passthrough) Open(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// StaticKeyProvider returns a fixed key. Used in tests.
type StaticKeyProvider []byte

// Key returns the static key
func (p StaticKeyProvider) Key() ([]byte, error) {
	return p, nil
}
