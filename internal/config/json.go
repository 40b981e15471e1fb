package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonConfig struct {
	VaultDir       string   `json:"vault_dir"`
	StagingDir     string   `json:"staging_dir"`
	SettingsPath   string   `json:"settings_path"`
	LogPath        string   `json:"log_path"`
	LogLevel       string   `json:"log_level"`
	KeyringService string   `json:"keyring_service"`
	StagingGrace   Duration `json:"staging_grace"`
}

func parseJSON(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer f.Close()

	var jc jsonConfig
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&jc); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	return &Config{
		VaultDir:       jc.VaultDir,
		StagingDir:     jc.StagingDir,
		SettingsPath:   jc.SettingsPath,
		LogPath:        jc.LogPath,
		LogLevel:       jc.LogLevel,
		KeyringService: jc.KeyringService,
		StagingGrace:   time.Duration(jc.StagingGrace),
	}, nil
}

// Duration is a time.Duration that unmarshals from strings like "30s" or
// from a number of nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", b)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
