package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // security level, setup flag, timestamps
)

// Config keys
var (
	ConfigVersion       = []byte("version")
	ConfigCreated       = []byte("created")
	ConfigModified      = []byte("modified")
	ConfigSecurityLevel = []byte("security_level")
	ConfigSetupComplete = []byte("setup_complete")
)

// Settings provides BBolt-based storage for ordinary (non-secret) settings
type Settings struct {
	db *bolt.DB
}

// OpenSettings opens or creates the settings database at path
func OpenSettings(path string) (*Settings, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	s := &Settings{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Settings) Close() error {
	return s.db.Close()
}

// initialize creates the bucket structure if missing
func (s *Settings) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", ConfigBucket, err)
		}

		if config.Get(ConfigVersion) != nil {
			return nil
		}

		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		now := time.Now()
		created, _ := now.MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// SecurityLevel returns the stored security level, or "" if none was saved
func (s *Settings) SecurityLevel() (string, error) {
	var level string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		level = string(config.Get(ConfigSecurityLevel))
		return nil
	})
	return level, err
}

// SetSecurityLevel stores the level and marks setup complete in one transaction
func (s *Settings) SetSecurityLevel(level string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigSecurityLevel, []byte(level)); err != nil {
			return err
		}
		if err := config.Put(ConfigSetupComplete, []byte{1}); err != nil {
			return err
		}
		modified, _ := time.Now().MarshalBinary()
		return config.Put(ConfigModified, modified)
	})
}

// SetupComplete reports whether a security level has ever been saved
func (s *Settings) SetupComplete() (bool, error) {
	var complete bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		v := config.Get(ConfigSetupComplete)
		complete = len(v) == 1 && v[0] == 1
		return nil
	})
	return complete, err
}

// GetModified retrieves the last modified timestamp
func (s *Settings) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}
