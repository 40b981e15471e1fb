package core

//go:generate mockgen -source=interfaces.go -destination=../mock/core_mock.go -package=mock

import "github.com/illarion/cloak/internal/storage"

// SettingsStore persists the security level outside the vault.
type SettingsStore interface {
	SecurityLevel() (string, error)
	SetSecurityLevel(level string) error
	SetupComplete() (bool, error)
}

// ManifestStore loads and atomically saves the entry records.
type ManifestStore interface {
	Load() ([]storage.Record, error)
	Save(records []storage.Record) error
}

// KeySource hands out the vault encryption key.
type KeySource interface {
	GetOrCreateKey() ([]byte, error)
}
