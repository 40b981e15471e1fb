package core

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/illarion/cloak/internal/storage"
	"github.com/illarion/cloak/internal/vaultdir"
)

// Level is the security level used for new hides.
type Level int

const (
	LevelUnspecified Level = iota
	LevelFastHide
	LevelAdvanced
)

const (
	modeFastHide = "fast-hide"
	modeAdvanced = "advanced"

	// EncryptedSuffix marks sealed vault objects.
	EncryptedSuffix = ".enc"
)

func (l Level) String() string {
	switch l {
	case LevelFastHide:
		return modeFastHide
	case LevelAdvanced:
		return modeAdvanced
	default:
		return "unspecified"
	}
}

// ParseLevel parses a level name. The empty string is LevelUnspecified.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		return LevelUnspecified, nil
	case modeFastHide, "fast", "fasthide":
		return LevelFastHide, nil
	case modeAdvanced, "encrypt", "encrypted":
		return LevelAdvanced, nil
	}
	return LevelUnspecified, fmt.Errorf("unknown security level %q", s)
}

// Concealment tells how an entry was hidden. It is either FastHide or
// Advanced.
type Concealment interface {
	level() Level
}

// FastHide entries were moved into the vault unchanged.
type FastHide struct {
	DisplayName string
}

// Advanced entries were sealed with the vault key.
type Advanced struct{}

func (FastHide) level() Level { return LevelFastHide }
func (Advanced) level() Level { return LevelAdvanced }

// Entry is one hidden item.
type Entry struct {
	ID           string
	StoredName   string
	OriginalPath string
	Concealment  Concealment
	HiddenAt     time.Time
	Size         int64
	// Perm is the permission bits of the original; zero for entries from
	// manifests written before it was recorded.
	Perm         fs.FileMode
}

// Level reports which transform produced the entry.
func (e Entry) Level() Level {
	return e.Concealment.level()
}

// DisplayName is the name shown to the user and used for staged copies.
func (e Entry) DisplayName() string {
	if fh, ok := e.Concealment.(FastHide); ok {
		return fh.DisplayName
	}
	return filepath.Base(e.OriginalPath)
}

func toRecord(e Entry) storage.Record {
	r := storage.Record{
		ID:           e.ID,
		StoredName:   e.StoredName,
		OriginalPath: e.OriginalPath,
		HiddenAt:     e.HiddenAt,
		Size:         e.Size,
		Perm:         uint32(e.Perm),
	}
	switch c := e.Concealment.(type) {
	case FastHide:
		r.Mode = modeFastHide
		r.DisplayName = c.DisplayName
	case Advanced:
		r.Mode = modeAdvanced
	}
	return r
}

func toRecords(entries []Entry) []storage.Record {
	records := make([]storage.Record, len(entries))
	for i, e := range entries {
		records[i] = toRecord(e)
	}
	return records
}

// fromRecords converts and validates manifest records. Any inconsistency
// is ErrManifestCorrupt.
func fromRecords(records []storage.Record) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))
	ids := make(map[string]bool, len(records))
	names := make(map[string]bool, len(records))

	for i, r := range records {
		corrupt := func(format string, args ...any) error {
			return fmt.Errorf("%w: entry %d: %s", storage.ErrManifestCorrupt, i, fmt.Sprintf(format, args...))
		}

		if r.ID == "" {
			return nil, corrupt("empty id")
		}
		if ids[r.ID] {
			return nil, corrupt("duplicate id %s", r.ID)
		}
		if err := vaultdir.ValidateName(r.StoredName); err != nil {
			return nil, corrupt("%v", err)
		}
		if names[r.StoredName] {
			return nil, corrupt("duplicate stored name %s", r.StoredName)
		}
		if fs.FileMode(r.Perm)&^fs.ModePerm != 0 {
			return nil, corrupt("invalid permission bits %o", r.Perm)
		}
		if !filepath.IsAbs(r.OriginalPath) {
			return nil, corrupt("original path %q is not absolute", r.OriginalPath)
		}

		var c Concealment
		switch r.Mode {
		case modeFastHide:
			if r.DisplayName == "" {
				return nil, corrupt("fast-hide entry without display name")
			}
			c = FastHide{DisplayName: r.DisplayName}
		case modeAdvanced:
			if r.DisplayName != "" {
				return nil, corrupt("advanced entry with display name")
			}
			c = Advanced{}
		default:
			return nil, corrupt("unknown mode %q", r.Mode)
		}

		ids[r.ID] = true
		names[r.StoredName] = true
		entries = append(entries, Entry{
			ID:           r.ID,
			StoredName:   r.StoredName,
			OriginalPath: r.OriginalPath,
			Concealment:  c,
			HiddenAt:     r.HiddenAt,
			Size:         r.Size,
			Perm:         fs.FileMode(r.Perm),
		})
	}
	return entries, nil
}
