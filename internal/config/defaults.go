package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaults places the vault and settings under the user config directory
// and the staging area and log under the user cache directory.
func defaults() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine cache directory: %w", err)
	}

	base := filepath.Join(configDir, appDir)
	cache := filepath.Join(cacheDir, appDir)

	return &Config{
		VaultDir:       filepath.Join(base, "vault"),
		SettingsPath:   filepath.Join(base, "settings.db"),
		StagingDir:     filepath.Join(cache, "staging"),
		LogPath:        filepath.Join(cache, "cloak.log"),
		LogLevel:       DefaultLogLevel,
		KeyringService: DefaultKeyring,
		StagingGrace:   DefaultStagingGrace,
	}, nil
}
