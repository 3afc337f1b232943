package scheme

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dbsmedya/encbench/internal/types"
)

// AEAD is a nonce-based authenticated scheme. Every Encrypt draws a fresh
// random nonce, returned in CipherResult.Nonce.
type AEAD struct {
	name string
	aead cipher.AEAD
	rand io.Reader
}

// NewAESGCM returns AES-256-GCM keyed with a 32-byte key.
func NewAESGCM(key []byte) (*AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%s requires a 32-byte key, got %d", NameAESGCM, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &AEAD{name: NameAESGCM, aead: gcm, rand: rand.Reader}, nil
}

// NewChaCha20Poly1305 returns ChaCha20-Poly1305 keyed with a 32-byte key.
func NewChaCha20Poly1305(key []byte) (*AEAD, error) {
	c, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", NameChaCha20Poly1305, err)
	}
	return &AEAD{name: NameChaCha20Poly1305, aead: c, rand: rand.Reader}, nil
}

func (a *AEAD) Name() string { return a.name }

func (a *AEAD) MaxMessageSize() int { return 0 }

// NonceSize returns the length of the nonce carried with each ciphertext.
func (a *AEAD) NonceSize() int { return a.aead.NonceSize() }

func (a *AEAD) Encrypt(plaintext []byte) (types.CipherResult, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(a.rand, nonce); err != nil {
		return types.CipherResult{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return types.CipherResult{
		Nonce:      nonce,
		Ciphertext: a.aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

func (a *AEAD) Decrypt(c types.CipherResult) ([]byte, error) {
	if len(c.Nonce) != a.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %s nonce must be %d bytes, got %d",
			ErrDecrypt, a.name, a.aead.NonceSize(), len(c.Nonce))
	}
	plaintext, err := a.aead.Open(nil, c.Nonce, c.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecrypt, a.name, err)
	}
	return plaintext, nil
}
