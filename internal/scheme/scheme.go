// Package scheme implements the symmetric and asymmetric cipher schemes the
// benchmark compares, plus the run-wide key material that drives them.
package scheme

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/types"
)

// Scheme names accepted in configuration.
const (
	NameAESGCM           = "aes-256-gcm"
	NameFernet           = "fernet"
	NameChaCha20Poly1305 = "chacha20-poly1305"
	NameRSAOAEP          = "rsa-oaep-sha256"
	NameRSAPKCS1v15      = "rsa-pkcs1v15"
)

var (
	// ErrMessageTooLong is returned when a payload exceeds the scheme's maximum message size.
	ErrMessageTooLong = errors.New("message too long for scheme")
	// ErrDecrypt is returned when a ciphertext fails authentication or cannot be decrypted.
	ErrDecrypt = errors.New("decryption failed")
	// ErrUnknownScheme is returned for scheme names this package does not implement.
	ErrUnknownScheme = errors.New("unknown scheme")
)

// Scheme encrypts and decrypts single records.
type Scheme interface {
	Name() string
	Encrypt(plaintext []byte) (types.CipherResult, error)
	Decrypt(c types.CipherResult) ([]byte, error)
	// MaxMessageSize is the largest plaintext Encrypt accepts, 0 when unbounded.
	MaxMessageSize() int
}

// Keyring holds the key material for one run. It is built once before any
// measurement and never mutated afterwards.
type Keyring struct {
	Symmetric  Scheme
	Asymmetric Scheme
}

// NewKeyring generates a fresh symmetric key and RSA key pair as configured.
func NewKeyring(cfg *config.Config) (*Keyring, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}

	sym, err := NewSymmetric(cfg.Symmetric.Scheme, key)
	if err != nil {
		return nil, err
	}

	asym, err := GenerateAsymmetric(cfg.Asymmetric.Scheme, cfg.Asymmetric.KeyBits)
	if err != nil {
		return nil, err
	}

	return &Keyring{Symmetric: sym, Asymmetric: asym}, nil
}

// NewSymmetric builds the named symmetric scheme from a 32-byte key.
func NewSymmetric(name string, key []byte) (Scheme, error) {
	switch name {
	case NameAESGCM:
		return NewAESGCM(key)
	case NameChaCha20Poly1305:
		return NewChaCha20Poly1305(key)
	case NameFernet:
		return NewFernet(key)
	default:
		return nil, fmt.Errorf("%w: symmetric %q", ErrUnknownScheme, name)
	}
}

// GenerateAsymmetric generates an RSA key pair and wraps it in the named padding scheme.
func GenerateAsymmetric(name string, bits int) (Scheme, error) {
	padding, err := paddingFor(name)
	if err != nil {
		return nil, err
	}
	return GenerateRSA(bits, padding)
}

func paddingFor(name string) (Padding, error) {
	switch name {
	case NameRSAOAEP:
		return PaddingOAEPSHA256, nil
	case NameRSAPKCS1v15:
		return PaddingPKCS1v15, nil
	default:
		return 0, fmt.Errorf("%w: asymmetric %q", ErrUnknownScheme, name)
	}
}
