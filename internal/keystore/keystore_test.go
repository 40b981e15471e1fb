package keystore

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/illarion/cloak/internal/crypto"
)

var testParams = crypto.HashParams{Time: 1, Memory: 1024, Threads: 1}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	keyring.MockInit()
	return New("cloak-test-"+t.Name(), WithHashParams(testParams))
}

// brokenBackend fails every call
type brokenBackend struct{}

func (brokenBackend) Get(string, string) (string, error) { return "", errors.New("dbus: no session") }
func (brokenBackend) Set(string, string, string) error   { return errors.New("dbus: no session") }
func (brokenBackend) Delete(string, string) error        { return errors.New("dbus: no session") }

// mapBackend is an in-memory backend with preset values
type mapBackend struct {
	mu    sync.Mutex
	items map[string]string
}

func (m *mapBackend) Get(service, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[service+"/"+user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m *mapBackend) Set(service, user, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[service+"/"+user] = secret
	return nil
}

func (m *mapBackend) Delete(service, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, service+"/"+user)
	return nil
}

func TestGetOrCreateKey_CreatesOnce(t *testing.T) {
	s := newTestStore(t)

	has, err := s.HasKey()
	require.NoError(t, err)
	assert.False(t, has)

	key1, err := s.GetOrCreateKey()
	require.NoError(t, err)
	assert.Len(t, key1, crypto.KeySize)

	key2, err := s.GetOrCreateKey()
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	has, err = s.HasKey()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGetOrCreateKey_ConcurrentFirstUse(t *testing.T) {
	s := New("svc", WithBackend(&mapBackend{items: map[string]string{}}))

	const n = 16
	keys := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k, err := s.GetOrCreateKey()
			if err != nil {
				t.Errorf("GetOrCreateKey failed: %v", err)
				return
			}
			keys[i] = k
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if !bytes.Equal(keys[0], keys[i]) {
			t.Fatalf("caller %d got a different key", i)
		}
	}
}

func TestGetOrCreateKey_Unavailable(t *testing.T) {
	s := New("svc", WithBackend(brokenBackend{}))

	_, err := s.GetOrCreateKey()
	assert.ErrorIs(t, err, ErrKeyStoreUnavailable)
}

func TestGetOrCreateKey_MockedKeyringError(t *testing.T) {
	keyring.MockInitWithError(errors.New("keychain locked"))
	t.Cleanup(keyring.MockInit)

	s := New("cloak-test-locked")
	_, err := s.GetOrCreateKey()
	assert.ErrorIs(t, err, ErrKeyStoreUnavailable)
}

func TestGetOrCreateKey_MalformedKey(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"not base64", "%%%"},
		{"short key", "c2hvcnQ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mapBackend{items: map[string]string{"svc/" + keyItem: tt.stored}}
			s := New("svc", WithBackend(b))

			_, err := s.GetOrCreateKey()
			assert.ErrorIs(t, err, ErrKeyStoreUnavailable)
			// the malformed value must not be replaced by a fresh key
			assert.Equal(t, tt.stored, b.items["svc/"+keyItem])
		})
	}
}

func TestSetMasterCredential(t *testing.T) {
	s := newTestStore(t)

	has, err := s.HasCredential()
	require.NoError(t, err)
	assert.False(t, has)

	salt, hash, err := s.SetMasterCredential([]byte("p@ss"))
	require.NoError(t, err)
	assert.Len(t, salt, crypto.SaltSize)
	assert.Len(t, hash, crypto.HashSize)

	assert.True(t, s.VerifyPassword([]byte("p@ss"), salt, hash))
	assert.False(t, s.VerifyPassword([]byte("p@sS"), salt, hash))

	has, err = s.HasCredential()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSetMasterCredential_OneTimeOnly(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.SetMasterCredential([]byte("first"))
	require.NoError(t, err)

	_, _, err = s.SetMasterCredential([]byte("second"))
	assert.ErrorIs(t, err, ErrCredentialExists)

	// original password still authenticates
	assert.NoError(t, s.Authenticate([]byte("first")))
	assert.ErrorIs(t, s.Authenticate([]byte("second")), ErrWrongPassword)
}

func TestAuthenticate_NoCredential(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Authenticate([]byte("anything")), ErrNoCredential)
}

func TestAuthenticate_MalformedCredential(t *testing.T) {
	b := &mapBackend{items: map[string]string{"svc/" + credentialItem: `{"salt":"AAAA"}`}}
	s := New("svc", WithBackend(b))

	assert.ErrorIs(t, s.Authenticate([]byte("x")), ErrKeyStoreUnavailable)
	_, err := s.HasCredential()
	assert.ErrorIs(t, err, ErrKeyStoreUnavailable)
}
