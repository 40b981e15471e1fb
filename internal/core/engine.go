package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/illarion/cloak/internal/crypto"
	"github.com/illarion/cloak/internal/keystore"
	"github.com/illarion/cloak/internal/logger"
	"github.com/illarion/cloak/internal/storage"
	"github.com/illarion/cloak/internal/vaultdir"
	"github.com/illarion/cloak/internal/viewer"
)

const (
	DirPermSecure       = 0700
	FilePermSecure      = 0600
	DefaultStagingGrace = 30 * time.Second
)

// Options wires the engine's collaborators.
type Options struct {
	Dir      *vaultdir.Dir
	Keys     KeySource
	Settings SettingsStore
	Viewer   viewer.Viewer
	Logger   *logger.Logger

	// Manifest defaults to the manifest file in the vault root.
	Manifest ManifestStore

	// Level is the security level for new hides.
	Level Level

	// StagingGrace is how long staged plaintext survives after
	// OnForegroundLost. Zero means DefaultStagingGrace.
	StagingGrace time.Duration
}

// Engine performs hide, unhide, open and delete against one vault.
type Engine struct {
	dir      *vaultdir.Dir
	keys     KeySource
	settings SettingsStore
	viewer   viewer.Viewer
	manifest ManifestStore
	log      *logger.Logger
	grace    time.Duration

	// opMu serializes transforms and manifest writes
	opMu   sync.Mutex
	cipher *crypto.Cipher
	closed bool

	// stateMu guards the published snapshot
	stateMu sync.RWMutex
	entries []Entry
	level   Level

	timerMu    sync.Mutex
	purgeTimer *time.Timer
}

// New loads the manifest and returns a ready engine. A manifest that cannot
// be read or validated fails with storage.ErrManifestCorrupt.
func New(opts Options) (*Engine, error) {
	if opts.Dir == nil {
		return nil, fmt.Errorf("vault directory is required")
	}

	e := &Engine{
		dir:      opts.Dir,
		keys:     opts.Keys,
		settings: opts.Settings,
		viewer:   opts.Viewer,
		manifest: opts.Manifest,
		log:      opts.Logger,
		grace:    opts.StagingGrace,
		level:    opts.Level,
	}
	if e.manifest == nil {
		e.manifest = storage.NewManifest(opts.Dir.Root())
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.log = e.log.Component("engine")
	if e.grace <= 0 {
		e.grace = DefaultStagingGrace
	}

	records, err := e.manifest.Load()
	if err != nil {
		return nil, err
	}
	entries, err := fromRecords(records)
	if err != nil {
		return nil, err
	}
	e.entries = entries

	e.log.Debug().Int("entries", len(entries)).Str("root", opts.Dir.Root()).Msg("vault loaded")
	return e, nil
}

// Close cancels any pending purge, purges staging and destroys the cached
// key.
func (e *Engine) Close() error {
	e.OnForegroundGained()

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.dir.PurgeStaging()
	if e.cipher != nil {
		e.cipher.Destroy()
		e.cipher = nil
	}
	return nil
}

// Level returns the security level used for new hides.
func (e *Engine) Level() Level {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.level
}

// SetLevel persists and applies a new security level. Existing entries keep
// the mode they were hidden with.
func (e *Engine) SetLevel(level Level) error {
	if level == LevelUnspecified {
		return ErrLevelUnspecified
	}
	if e.settings != nil {
		if err := e.settings.SetSecurityLevel(level.String()); err != nil {
			return fmt.Errorf("failed to save security level: %w", err)
		}
	}

	e.stateMu.Lock()
	e.level = level
	e.stateMu.Unlock()

	e.log.Info().Str("level", level.String()).Msg("security level changed")
	return nil
}

// SetupComplete reports whether a security level was ever saved. Without a
// settings store it falls back to the level the engine was started with.
func (e *Engine) SetupComplete() (bool, error) {
	if e.settings == nil {
		return e.Level() != LevelUnspecified, nil
	}
	done, err := e.settings.SetupComplete()
	if err != nil {
		return false, fmt.Errorf("failed to read setup state: %w", err)
	}
	return done, nil
}

// Entries returns a snapshot of all entries.
func (e *Engine) Entries() []Entry {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return slices.Clone(e.entries)
}

// Lookup resolves a full ID or a unique ID prefix.
func (e *Engine) Lookup(idOrPrefix string) (Entry, error) {
	if idOrPrefix == "" {
		return Entry{}, ErrNotFound
	}

	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	var (
		match Entry
		count int
	)
	for _, ent := range e.entries {
		if ent.ID == idOrPrefix {
			return ent, nil
		}
		if strings.HasPrefix(ent.ID, idOrPrefix) {
			match = ent
			count++
		}
	}

	switch count {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return match, nil
	default:
		return Entry{}, fmt.Errorf("%w: %s matches %d entries", ErrAmbiguousID, idOrPrefix, count)
	}
}

// find returns the entry with the exact id. Caller holds opMu.
func (e *Engine) find(id string) (Entry, error) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	for _, ent := range e.entries {
		if ent.ID == id {
			return ent, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// save persists entries and, on success, publishes them. Caller holds opMu.
func (e *Engine) save(entries []Entry) error {
	if err := e.manifest.Save(toRecords(entries)); err != nil {
		return persistErr(err)
	}
	e.publish(entries)
	return nil
}

func (e *Engine) publish(entries []Entry) {
	e.stateMu.Lock()
	e.entries = entries
	e.stateMu.Unlock()
}

// without returns a copy of the current entries minus id. Caller holds opMu.
func (e *Engine) without(id string) []Entry {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	out := make([]Entry, 0, len(e.entries))
	for _, ent := range e.entries {
		if ent.ID != id {
			out = append(out, ent)
		}
	}
	return out
}

// with returns a copy of the current entries plus ent. Caller holds opMu.
func (e *Engine) with(ent Entry) []Entry {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	out := make([]Entry, 0, len(e.entries)+1)
	out = append(out, e.entries...)
	return append(out, ent)
}

// cipherLocked returns the cached cipher, fetching the key on first use.
// Caller holds opMu.
func (e *Engine) cipherLocked() (*crypto.Cipher, error) {
	if e.cipher != nil {
		return e.cipher, nil
	}
	if e.keys == nil {
		return nil, keystore.ErrKeyStoreUnavailable
	}

	key, err := e.keys.GetOrCreateKey()
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", keystore.ErrKeyStoreUnavailable, err)
	}
	e.cipher = c
	return c, nil
}

func (e *Engine) lock() error {
	e.opMu.Lock()
	if e.closed {
		e.opMu.Unlock()
		return ErrClosed
	}
	return nil
}
