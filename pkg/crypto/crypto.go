// Package crypto protects client secrets at rest with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/tendant/idm-portal/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keySalt       = "idm-portal-app-key"
	keyIterations = 10000
	keyLength     = 32
)

// Service encrypts and decrypts client secrets with a key derived once from the application key.
type Service struct {
	aead cipher.AEAD
}

// New derives the AES key from appKey
func New(appKey string) (*Service, error) {
	if appKey == "" {
		return nil, fmt.Errorf("app key cannot be empty")
	}

	key := pbkdf2.Key([]byte(appKey), []byte(keySalt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Service{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce. The nonce is prepended
// to the ciphertext and the result is base64 encoded.
func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Any malformed or tampered input
// yields an ErrCodeDecryptionFailed error and no plaintext.
func (s *Service) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.DecryptionFailed(fmt.Errorf("failed to decode base64: %w", err))
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return "", errors.DecryptionFailed(fmt.Errorf("ciphertext too short"))
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.DecryptionFailed(err)
	}

	return string(plaintext), nil
}
