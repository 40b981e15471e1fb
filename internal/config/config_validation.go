package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/illarion/cloak/internal/logger"
)

func (cfg *Config) validate() error {
	paths := []struct {
		name  string
		value string
	}{
		{"vault_dir", cfg.VaultDir},
		{"staging_dir", cfg.StagingDir},
		{"settings_path", cfg.SettingsPath},
		{"log_path", cfg.LogPath},
	}
	for _, p := range paths {
		if !filepath.IsAbs(p.value) {
			return fmt.Errorf("%s %q: %w", p.name, p.value, ErrRelativePath)
		}
	}

	if cfg.StagingGrace < 0 {
		return fmt.Errorf("%v: %w", cfg.StagingGrace, ErrInvalidGrace)
	}

	vault := filepath.Clean(cfg.VaultDir)
	staging := filepath.Clean(cfg.StagingDir)
	if staging == vault || strings.HasPrefix(staging, vault+string(filepath.Separator)) {
		return ErrOverlappingDirs
	}

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}
