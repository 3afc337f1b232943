package scheme

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/dbsmedya/encbench/internal/types"
)

const (
	fernetVersion  = 0x80
	fernetHeader   = 1 + 8 + aes.BlockSize // version, timestamp, IV
	fernetMinToken = fernetHeader + aes.BlockSize + sha256.Size
)

// Fernet implements Fernet tokens: AES-128-CBC with PKCS#7 padding,
// authenticated with HMAC-SHA256. The IV travels inside the token, so
// CipherResult.Nonce stays empty. Tokens are kept raw, not base64url.
type Fernet struct {
	signKey []byte
	encKey  []byte
	rand    io.Reader
	now     func() time.Time
}

// NewFernet splits a 32-byte key into a 16-byte signing key and a 16-byte encryption key.
func NewFernet(key []byte) (*Fernet, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%s requires a 32-byte key, got %d", NameFernet, len(key))
	}
	return &Fernet{
		signKey: append([]byte(nil), key[:16]...),
		encKey:  append([]byte(nil), key[16:]...),
		rand:    rand.Reader,
		now:     time.Now,
	}, nil
}

func (f *Fernet) Name() string { return NameFernet }

func (f *Fernet) MaxMessageSize() int { return 0 }

func (f *Fernet) Encrypt(plaintext []byte) (types.CipherResult, error) {
	block, err := aes.NewCipher(f.encKey)
	if err != nil {
		return types.CipherResult{}, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	token := make([]byte, fernetHeader+len(padded), fernetHeader+len(padded)+sha256.Size)
	token[0] = fernetVersion
	binary.BigEndian.PutUint64(token[1:9], uint64(f.now().Unix()))
	iv := token[9:fernetHeader]
	if _, err := io.ReadFull(f.rand, iv); err != nil {
		return types.CipherResult{}, fmt.Errorf("failed to generate IV: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(token[fernetHeader:], padded)

	mac := hmac.New(sha256.New, f.signKey)
	mac.Write(token)
	return types.CipherResult{Ciphertext: mac.Sum(token)}, nil
}

func (f *Fernet) Decrypt(c types.CipherResult) ([]byte, error) {
	token := c.Ciphertext
	if len(token) < fernetMinToken || (len(token)-fernetHeader-sha256.Size)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: fernet token has invalid length %d", ErrDecrypt, len(token))
	}
	if token[0] != fernetVersion {
		return nil, fmt.Errorf("%w: fernet token version 0x%02x", ErrDecrypt, token[0])
	}

	body, sum := token[:len(token)-sha256.Size], token[len(token)-sha256.Size:]
	mac := hmac.New(sha256.New, f.signKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sum) {
		return nil, fmt.Errorf("%w: fernet signature mismatch", ErrDecrypt)
	}

	block, err := aes.NewCipher(f.encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	ciphertext := body[fernetHeader:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, body[9:fernetHeader]).CryptBlocks(plaintext, ciphertext)

	plaintext, ok := pkcs7Unpad(plaintext, aes.BlockSize)
	if !ok {
		return nil, fmt.Errorf("%w: fernet padding is invalid", ErrDecrypt)
	}
	return plaintext, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
