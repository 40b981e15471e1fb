package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ManifestFile    = "manifest.json"
	manifestVersion = 1
	tempPrefix      = ".manifest-"
	tempSuffix      = ".tmp"
)

var ErrManifestCorrupt = errors.New("manifest corrupt")

// Record is the persisted form of one hidden item
type Record struct {
	ID           string    `json:"id"`
	StoredName   string    `json:"stored_name"`
	OriginalPath string    `json:"original_path"`
	Mode         string    `json:"mode"`
	DisplayName  string    `json:"display_name,omitempty"`
	HiddenAt     time.Time `json:"hidden_at"`
	Size         int64     `json:"size"`
	Perm         uint32    `json:"perm,omitempty"`
}

// manifestDoc is the on-disk document
type manifestDoc struct {
	Version  int       `json:"version"`
	Modified time.Time `json:"modified"`
	Entries  []Record  `json:"entries"`
}

// Manifest persists the record list as a single JSON file
type Manifest struct {
	dir string
}

// NewManifest returns a manifest stored in dir
func NewManifest(dir string) *Manifest {
	return &Manifest{dir: dir}
}

// Path returns the manifest file path
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, ManifestFile)
}

// IsManifestFile reports whether name belongs to the manifest (the file
// itself or an in-flight temp file) rather than to a vault object.
func IsManifestFile(name string) bool {
	if name == ManifestFile {
		return true
	}
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, tempSuffix)
}

// Load reads the manifest. A missing file is an empty vault; anything
// unreadable or unparsable is ErrManifestCorrupt.
func (m *Manifest) Load() ([]Record, error) {
	data, err := os.ReadFile(m.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrManifestCorrupt, m.Path(), err)
	}

	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestCorrupt, err)
	}
	if doc.Version != manifestVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrManifestCorrupt, doc.Version)
	}
	if doc.Entries == nil {
		doc.Entries = []Record{}
	}

	return doc.Entries, nil
}

// Save replaces the manifest with records atomically
func (m *Manifest) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(manifestDoc{
		Version:  manifestVersion,
		Modified: time.Now().UTC(),
		Entries:  records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, tempPrefix+"*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp manifest: %w", err)
	}

	// Atomic replace
	if err := os.Rename(tmpPath, m.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	syncDir(m.dir)
	return nil
}

// syncDir flushes a directory entry change; not supported everywhere, so
// failures are ignored
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
