// Package sealer encrypts message bodies at rest with XChaCha20-Poly1305.
package sealer

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrBadCiphertext = errors.New("sealer: malformed ciphertext")

type Sealer interface {
	// Seal returns the stored form of plaintext and whether it is encrypted.
	Seal(plaintext string) (string, bool, error)
	Open(stored string, encrypted bool) (string, error)
}

type SealerImpl struct {
	key []byte
}

// New builds a sealer from a hex encoded 32 byte key. An empty key yields a
// sealer that stores text unchanged.
func New(hexKey string) (Sealer, error) {
	if hexKey == "" {
		return &SealerImpl{}, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode message key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("message key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &SealerImpl{key: key}, nil
}

func (s *SealerImpl) Seal(plaintext string) (string, bool, error) {
	if s.key == nil {
		return plaintext, false, nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", false, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", false, err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), true, nil
}

func (s *SealerImpl) Open(stored string, encrypted bool) (string, error) {
	if !encrypted {
		return stored, nil
	}
	if s.key == nil {
		return "", errors.New("sealer: encrypted message but no key configured")
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrBadCiphertext
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrBadCiphertext
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open message: %w", err)
	}
	return string(plain), nil
}
