package keystore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// ErrNotFound must be returned by a Backend when the item does not exist
var ErrNotFound = keyring.ErrNotFound

// Backend is the secure credential store the Store persists into
type Backend interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// OSKeyring stores items in the OS keyring
type OSKeyring struct{}

// Get retrieves a secret from the OS keyring
func (OSKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Set stores a secret in the OS keyring
func (OSKeyring) Set(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

// Delete removes a secret from the OS keyring
func (OSKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
