package sealer

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name under which the cache key is stored
	keyringService = "tenant-mirror"

	// keyringUser is the account name for the cache encryption key
	keyringUser = "cache-encryption-key"
)

// KeyringProvider stores the cache encryption key in the OS keyring,
// generating a fresh random key on first use.
type KeyringProvider struct {
	service string
	user    string
}

// NewKeyringProvider creates a KeyProvider backed by the OS keyring
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{
		service: keyringService,
		user:    keyringUser,
	}
}

// Key returns the stored encryption key, generating and persisting a new
// one when the keyring has no entry yet.
func (p *KeyringProvider) Key() ([]byte, error) {
	encoded, err := keyring.Get(p.service, p.user)
	if err == nil {
		key, decodeErr := base64.StdEncoding.DecodeString(encoded)
		if decodeErr != nil {
			return nil, fmt.Errorf("stored encryption key is corrupt: %w", decodeErr)
		}
		return key, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("failed to read encryption key from keyring: %w", err)
	}

	// First run: generate and persist a new key
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := keyring.Set(p.service, p.user, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("failed to store encryption key in keyring: %w", err)
	}
	return key, nil
}
