package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// tokenVersion is the first byte of every encrypted token.
	tokenVersion = 0x01

	nonceSize = 12

	// keySize selects AES-256.
	keySize = 32

	// hkdfInfo binds derived keys to this use.
	hkdfInfo = "facturas-core/oauth-token-encryption/v1"
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrInvalidBlobSize is returned when the encrypted token is too small.
	ErrInvalidBlobSize = errors.New("encrypted token is too small")

	// ErrUnsupportedVersion is returned when the token version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported encrypted token version")

	// ErrDecryptionFailed is returned for a wrong key or corrupted data.
	ErrDecryptionFailed = errors.New("failed to decrypt token")
)

// TokenCipher encrypts OAuth tokens at rest with AES-256-GCM.
// The stored format is: version(1) || nonce(12) || ciphertext(N)
type TokenCipher struct {
	gcm cipher.AEAD
}

// NewTokenCipher creates a cipher with a 32-byte key.
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &TokenCipher{gcm: gcm}, nil
}

// NewTokenCipherFromSecret accepts a 32-byte key as hex or base64, and
// otherwise derives one from the secret with HKDF-SHA256.
func NewTokenCipherFromSecret(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKeySize)
	}
	if key, err := hex.DecodeString(secret); err == nil && len(key) == keySize {
		return NewTokenCipher(key)
	}
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) == keySize {
		return NewTokenCipher(key)
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return NewTokenCipher(key)
}

// Encrypt encrypts a token. An empty token encrypts to nil so that it is
// stored as NULL and never overwrites a stored value through COALESCE.
func (c *TokenCipher) Encrypt(token string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nil, nonce, []byte(token), nil)

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = tokenVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Decrypt reverses Encrypt. A NULL column (nil blob) decrypts to "".
func (c *TokenCipher) Decrypt(blob []byte) (string, error) {
	if blob == nil {
		return "", nil
	}

	minSize := 1 + nonceSize + c.gcm.Overhead()
	if len(blob) < minSize {
		return "", ErrInvalidBlobSize
	}

	if version := blob[0]; version != tokenVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, version)
	}

	nonce := blob[1 : 1+nonceSize]
	ciphertext := blob[1+nonceSize:]

	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
