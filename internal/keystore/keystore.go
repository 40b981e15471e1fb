package keystore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/illarion/cloak/internal/crypto"
)

const (
	DefaultService = "cloak"

	keyItem        = "encryption-key"
	credentialItem = "master-credential"
)

var (
	ErrKeyStoreUnavailable = errors.New("secure key store unavailable")
	ErrCredentialExists    = errors.New("master password already set")
	ErrNoCredential        = errors.New("master password not set")
	ErrWrongPassword       = errors.New("wrong password")
)

// credentialRecord is the keyring representation of the master credential
type credentialRecord struct {
	Salt   []byte            `json:"salt"`
	Hash   []byte            `json:"hash"`
	Params crypto.HashParams `json:"params"`
}

// Store manages the encryption key and master credential
type Store struct {
	backend Backend
	service string
	params  crypto.HashParams

	// serializes first-use key creation and credential setup
	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithBackend replaces the OS keyring backend
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithHashParams sets the Argon2id parameters for new credentials
func WithHashParams(p crypto.HashParams) Option {
	return func(s *Store) { s.params = p }
}

// New creates a Store for the given keyring service name
func New(service string, opts ...Option) *Store {
	if service == "" {
		service = DefaultService
	}
	s := &Store{
		backend: OSKeyring{},
		service: service,
		params:  crypto.DefaultHashParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateKey returns the persisted encryption key, generating and
// persisting a new one on first use. The caller should clear the returned
// slice when done with it.
func (s *Store) GetOrCreateKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.readKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	newKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreUnavailable, err)
	}
	defer crypto.ClearBytes(newKey)

	if err := s.backend.Set(s.service, keyItem, base64.StdEncoding.EncodeToString(newKey)); err != nil {
		return nil, fmt.Errorf("%w: failed to store key: %v", ErrKeyStoreUnavailable, err)
	}

	// Read back so that a concurrent writer's value wins consistently
	key, err = s.readKey()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: key vanished after write", ErrKeyStoreUnavailable)
		}
		return nil, err
	}
	return key, nil
}

// HasKey reports whether an encryption key has been created
func (s *Store) HasKey() (bool, error) {
	key, err := s.readKey()
	if err == nil {
		crypto.ClearBytes(key)
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// readKey returns ErrNotFound (unwrapped) when no key is stored
func (s *Store) readKey() ([]byte, error) {
	encoded, err := s.backend.Get(s.service, keyItem)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreUnavailable, err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(key) != crypto.KeySize {
		crypto.ClearBytes(key)
		return nil, fmt.Errorf("%w: stored key is malformed", ErrKeyStoreUnavailable)
	}
	return key, nil
}

// SetMasterCredential hashes password with a fresh salt and stores the
// result. It is a one-time operation and fails if a credential exists.
func (s *Store) SetMasterCredential(password []byte) (salt, hash []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readCredential(); err == nil {
		return nil, nil, ErrCredentialExists
	} else if !errors.Is(err, ErrNoCredential) {
		return nil, nil, err
	}

	salt, hash, err = crypto.NewCredential(password, s.params)
	if err != nil {
		return nil, nil, err
	}

	data, err := json.Marshal(credentialRecord{Salt: salt, Hash: hash, Params: s.params})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := s.backend.Set(s.service, credentialItem, string(data)); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to store credential: %v", ErrKeyStoreUnavailable, err)
	}

	return salt, hash, nil
}

// HasCredential reports whether first-run password setup has happened
func (s *Store) HasCredential() (bool, error) {
	_, err := s.readCredential()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNoCredential) {
		return false, nil
	}
	return false, err
}

// VerifyPassword recomputes the salted hash of candidate with the store's
// parameters and compares it to expectedHash in constant time.
func (s *Store) VerifyPassword(candidate, salt, expectedHash []byte) bool {
	return crypto.VerifyPassword(candidate, salt, expectedHash, s.params)
}

// Authenticate checks password against the stored master credential
func (s *Store) Authenticate(password []byte) error {
	rec, err := s.readCredential()
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(password, rec.Salt, rec.Hash, rec.Params) {
		return ErrWrongPassword
	}
	return nil
}

func (s *Store) readCredential() (*credentialRecord, error) {
	data, err := s.backend.Get(s.service, credentialItem)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreUnavailable, err)
	}

	var rec credentialRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w: stored credential is malformed", ErrKeyStoreUnavailable)
	}
	if len(rec.Salt) < crypto.SaltSize || len(rec.Hash) != crypto.HashSize || rec.Params.Time == 0 || rec.Params.Threads == 0 {
		return nil, fmt.Errorf("%w: stored credential is malformed", ErrKeyStoreUnavailable)
	}
	return &rec, nil
}
