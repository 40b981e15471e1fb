package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

const (
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrInvalidKey = errors.New("invalid encryption key")
	ErrAuthFailed = errors.New("authentication failed: data corrupted or wrong key")
)

// Cipher provides authenticated encryption with a single key
type Cipher struct {
	key  []byte
	aead cipher.AEAD
}

// NewCipher creates a cipher for the given 256-bit key.
// The key is copied; the caller keeps ownership of its slice.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}

	owned := make([]byte, KeySize)
	copy(owned, key)

	block, err := aes.NewCipher(owned)
	if err != nil {
		ClearBytes(owned)
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		ClearBytes(owned)
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{key: owned, aead: aead}, nil
}

// Seal encrypts plaintext into one blob: nonce || ciphertext || tag.
// Every call draws a fresh random nonce.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends to nonce, so the result already has the nonce prefix
	blob := c.aead.Seal(nonce, nonce, plaintext, nil)
	return blob, nil
}

// Open authenticates and decrypts a blob produced by Seal.
// Tampered data, truncated data and a wrong key all return ErrAuthFailed.
func (c *Cipher) Open(blob []byte) ([]byte, error) {
	if len(blob) < NonceSize+TagSize {
		return nil, ErrAuthFailed
	}

	nonce := blob[:NonceSize]
	ciphertext := blob[NonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// Destroy clears the cipher's key from memory
func (c *Cipher) Destroy() {
	ClearBytes(c.key)
}

// Seal is a one-shot helper for callers that hold a raw key
func Seal(plaintext, key []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	defer c.Destroy()
	return c.Seal(plaintext)
}

// Open is a one-shot helper for callers that hold a raw key
func Open(blob, key []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	defer c.Destroy()
	return c.Open(blob)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateKey generates a new random 256-bit key
func GenerateKey() ([]byte, error) {
	return GenerateRandom(KeySize)
}
