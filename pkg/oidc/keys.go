package oidc

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
)

const defaultKeySize = 2048

// SigningKey signs identity tokens.
type SigningKey struct {
	PrivateKey *rsa.PrivateKey
	KeyID      string
}

// NewSigningKey wraps key and derives its key id from the public key fingerprint.
func NewSigningKey(key *rsa.PrivateKey) *SigningKey {
	return &SigningKey{PrivateKey: key, KeyID: "portal-" + fingerprint(&key.PublicKey)[:12]}
}

// EnsureSigningKey loads the PEM key at path, generating and saving a new one
// when the file does not exist.
func EnsureSigningKey(path string) (*SigningKey, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return generateSigningKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, err
	}
	sk := NewSigningKey(key)
	slog.Info("signing key loaded", "path", path, "key_id", sk.KeyID)
	return sk, nil
}

func generateSigningKey(path string) (*SigningKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, defaultKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	sk := NewSigningKey(key)
	slog.Info("signing key generated", "path", path, "key_id", sk.KeyID)
	return sk, nil
}

// ParsePrivateKey decodes a PKCS#1 or PKCS#8 PEM encoded RSA key.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return key, nil
}

// JWK is the public half of a signing key.
type JWK struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKSet struct {
	Keys []JWK `json:"keys"`
}

func (k *SigningKey) JWKSet() JWKSet {
	pub := k.PrivateKey.PublicKey
	return JWKSet{Keys: []JWK{{
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		Kid: k.KeyID,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}
}

func fingerprint(pub *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		slog.Warn("failed to marshal public key for fingerprint", "err", err)
		return "unknown000000"
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}
