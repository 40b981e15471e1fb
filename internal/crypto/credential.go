package crypto

import (
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16 // Credential salt size in bytes
	HashSize = 64 // Credential hash size in bytes (512 bits)
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// HashParams are the Argon2id cost parameters for the master credential
type HashParams struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"` // KiB
	Threads uint8  `json:"threads"`
}

// DefaultHashParams follows the OWASP Argon2id recommendation
var DefaultHashParams = HashParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
}

// HashPassword computes the 512-bit credential hash of password under salt
func HashPassword(password, salt []byte, params HashParams) []byte {
	return argon2.IDKey(password, salt, params.Time, params.Memory, params.Threads, HashSize)
}

// NewCredential generates a fresh salt and hashes password with it
func NewCredential(password []byte, params HashParams) (salt, hash []byte, err error) {
	if len(password) == 0 {
		return nil, nil, ErrEmptyPassword
	}

	salt, err = GenerateRandom(SaltSize)
	if err != nil {
		return nil, nil, err
	}

	return salt, HashPassword(password, salt, params), nil
}

// VerifyPassword recomputes the hash of candidate and compares it in constant time
func VerifyPassword(candidate, salt, expected []byte, params HashParams) bool {
	if len(expected) != HashSize {
		return false
	}
	computed := HashPassword(candidate, salt, params)
	defer ClearBytes(computed)
	return ConstantTimeCompare(computed, expected)
}
