package scheme

import (
	"crypto/aes"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// SealedSize returns the stored size in bytes (nonce plus ciphertext) of a
// plaintextLen-byte record, without generating any key material.
func SealedSize(name string, plaintextLen, keyBits int) (int, error) {
	switch name {
	case NameAESGCM:
		return gcmNonceSize + plaintextLen + gcmTagSize, nil
	case NameChaCha20Poly1305:
		return chacha20poly1305.NonceSize + plaintextLen + chacha20poly1305.Overhead, nil
	case NameFernet:
		padded := (plaintextLen/aes.BlockSize + 1) * aes.BlockSize
		return fernetHeader + padded + sha256.Size, nil
	case NameRSAOAEP, NameRSAPKCS1v15:
		return (keyBits + 7) / 8, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// MaxMessageSizeFor returns the plaintext limit of the named scheme at the
// given key size, 0 when unbounded.
func MaxMessageSizeFor(name string, keyBits int) (int, error) {
	k := (keyBits + 7) / 8
	switch name {
	case NameAESGCM, NameChaCha20Poly1305, NameFernet:
		return 0, nil
	case NameRSAOAEP:
		return k - 2*sha256.Size - 2, nil
	case NameRSAPKCS1v15:
		return k - 11, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}
