// Package keystore owns the vault's secrets in the OS credential store:
// the 256-bit encryption key and the master password verifier (salt + hash).
//
// The backend defaults to the OS keyring (Keychain, Secret Service,
// Windows Credential Manager) through github.com/zalando/go-keyring.
// Any backend failure other than "not found" is reported as
// ErrKeyStoreUnavailable; there is no fallback key.
package keystore
