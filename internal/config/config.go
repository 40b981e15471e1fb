package config

import (
	"time"
)

const (
	EnvPrefix           = "CLOAK_"
	DefaultStagingGrace = 30 * time.Second
	DefaultLogLevel     = "info"
	DefaultKeyring      = "cloak"
	appDir              = "cloak"
)

// Config holds every path and tunable the CLI needs.
type Config struct {
	VaultDir       string        `env:"VAULT_DIR"`
	StagingDir     string        `env:"STAGING_DIR"`
	SettingsPath   string        `env:"SETTINGS_PATH"`
	LogPath        string        `env:"LOG_PATH"`
	LogLevel       string        `env:"LOG_LEVEL"`
	KeyringService string        `env:"KEYRING_SERVICE"`
	StagingGrace   time.Duration `env:"STAGING_GRACE"`

	// JSONFilePath names an optional JSON config file; env only.
	JSONFilePath string `env:"CONFIG"`
}

// Load builds the configuration from env, the optional JSON file and
// defaults, then validates it.
func Load() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
