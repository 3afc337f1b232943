package scheme

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dbsmedya/encbench/internal/types"
)

// Padding selects the RSA encryption padding.
type Padding int

const (
	// PaddingOAEPSHA256 is OAEP with SHA-256 for both the label hash and MGF1.
	PaddingOAEPSHA256 Padding = iota
	// PaddingPKCS1v15 is the legacy PKCS #1 v1.5 encryption padding.
	PaddingPKCS1v15
)

// RSA encrypts with the public key and decrypts with the matching private key.
type RSA struct {
	priv    *rsa.PrivateKey
	padding Padding
	rand    io.Reader
}

// GenerateRSA generates a key pair with public exponent 65537.
func GenerateRSA(bits int, padding Padding) (*RSA, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %d-bit RSA key: %w", bits, err)
	}
	return NewRSA(priv, padding), nil
}

// NewRSA wraps an existing private key.
func NewRSA(priv *rsa.PrivateKey, padding Padding) *RSA {
	return &RSA{priv: priv, padding: padding, rand: rand.Reader}
}

func (r *RSA) Name() string {
	if r.padding == PaddingPKCS1v15 {
		return NameRSAPKCS1v15
	}
	return NameRSAOAEP
}

// KeyBits returns the modulus size in bits.
func (r *RSA) KeyBits() int {
	return r.priv.N.BitLen()
}

// MaxMessageSize returns k-2*hLen-2 for OAEP and k-11 for PKCS #1 v1.5.
func (r *RSA) MaxMessageSize() int {
	k := r.priv.PublicKey.Size()
	if r.padding == PaddingPKCS1v15 {
		return k - 11
	}
	return k - 2*sha256.Size - 2
}

func (r *RSA) Encrypt(plaintext []byte) (types.CipherResult, error) {
	if limit := r.MaxMessageSize(); len(plaintext) > limit {
		return types.CipherResult{}, fmt.Errorf("%w: %d bytes exceeds the %d-byte limit of %s with a %d-bit key",
			ErrMessageTooLong, len(plaintext), limit, r.Name(), r.KeyBits())
	}

	var (
		ciphertext []byte
		err        error
	)
	if r.padding == PaddingPKCS1v15 {
		ciphertext, err = rsa.EncryptPKCS1v15(r.rand, &r.priv.PublicKey, plaintext)
	} else {
		ciphertext, err = rsa.EncryptOAEP(sha256.New(), r.rand, &r.priv.PublicKey, plaintext, nil)
	}
	if err != nil {
		return types.CipherResult{}, fmt.Errorf("%s encrypt: %w", r.Name(), err)
	}
	return types.CipherResult{Ciphertext: ciphertext}, nil
}

func (r *RSA) Decrypt(c types.CipherResult) ([]byte, error) {
	var (
		plaintext []byte
		err       error
	)
	if r.padding == PaddingPKCS1v15 {
		plaintext, err = rsa.DecryptPKCS1v15(r.rand, r.priv, c.Ciphertext)
	} else {
		plaintext, err = rsa.DecryptOAEP(sha256.New(), r.rand, r.priv, c.Ciphertext, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecrypt, r.Name(), err)
	}
	return plaintext, nil
}
