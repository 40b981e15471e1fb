package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	defer c.Destroy()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short text", []byte("report contents")},
		{"binary", []byte{0, 1, 2, 3, 255, 254, 0, 0}},
		{"large", bytes.Repeat([]byte("0123456789abcdef"), 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Seal(tt.data)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if len(blob) != NonceSize+len(tt.data)+TagSize {
				t.Errorf("Unexpected blob size: got %d, want %d", len(blob), NonceSize+len(tt.data)+TagSize)
			}

			plain, err := c.Open(blob)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !bytes.Equal(plain, tt.data) {
				t.Error("Round trip mismatch")
			}
		})
	}
}

func TestOpenDetectsEveryFlippedByte(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	defer c.Destroy()

	blob, err := c.Seal([]byte("sensitive"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	for i := range blob {
		tampered := append([]byte(nil), blob...)
		tampered[i] ^= 0x01
		if _, err := c.Open(tampered); !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("byte %d: expected ErrAuthFailed, got %v", i, err)
		}
	}
}

func TestOpenWrongKey(t *testing.T) {
	blob, err := Seal([]byte("secret"), testKey(t))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(blob, testKey(t)); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestOpenTruncated(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	defer c.Destroy()

	if _, err := c.Open(make([]byte, NonceSize+TagSize-1)); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	defer c.Destroy()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		blob, err := c.Seal([]byte("same plaintext"))
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		nonce := string(blob[:NonceSize])
		if seen[nonce] {
			t.Fatal("Nonce reused")
		}
		seen[nonce] = true
	}
}

func TestNewCipherRejectsBadKey(t *testing.T) {
	for _, size := range []int{0, 16, 24, 31, 33} {
		if _, err := NewCipher(make([]byte, size)); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("size %d: expected ErrInvalidKey, got %v", size, err)
		}
	}
}

func TestDestroyDoesNotTouchCallerKey(t *testing.T) {
	key := testKey(t)
	original := append([]byte(nil), key...)

	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	c.Destroy()

	if !bytes.Equal(key, original) {
		t.Error("Destroy should only clear the cipher's own copy")
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d not cleared", i)
		}
	}
}
