package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/cloak/internal/crypto"
	"github.com/illarion/cloak/internal/vaultdir"
)

// Hide conceals the item at path using level and records it in the
// manifest. On failure no entry is created and no vault object is left
// behind.
func (e *Engine) Hide(ctx context.Context, path string, level Level) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if level == LevelUnspecified {
		return Entry{}, ErrLevelUnspecified
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fileErr("hide", path, ioErr(err))
	}

	overlaps, err := e.dir.Overlaps(absPath)
	if err != nil {
		return Entry{}, fileErr("hide", absPath, ioErr(err))
	}
	if overlaps {
		return Entry{}, fileErr("hide", absPath, ErrInsideVault)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return Entry{}, fileErr("hide", absPath, ioErr(err))
	}

	if err := e.lock(); err != nil {
		return Entry{}, err
	}
	defer e.opMu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fileErr("hide", absPath, ioErr(err))
	}

	entry := Entry{
		ID:           id.String(),
		OriginalPath: absPath,
		HiddenAt:     time.Now().UTC(),
	}

	var undo func() error
	switch level {
	case LevelFastHide:
		undo, err = e.moveIn(absPath, info, &entry)
	case LevelAdvanced:
		undo, err = e.sealIn(absPath, info, &entry)
	default:
		return Entry{}, fmt.Errorf("unknown security level %d", level)
	}
	if err != nil {
		return Entry{}, fileErr("hide", absPath, err)
	}

	if err := e.save(e.with(entry)); err != nil {
		if rbErr := undo(); rbErr != nil {
			// the object stays in the vault, so keep it visible in memory
			e.publish(e.with(entry))
			e.log.Error().Err(rbErr).Str("id", entry.ID).Str("stored_name", entry.StoredName).
				Msg("rollback after failed manifest save failed")
			return entry, fileErr("hide", absPath, errors.Join(err, rbErr))
		}
		e.log.Warn().Err(err).Str("path", absPath).Msg("hide rolled back")
		return Entry{}, fileErr("hide", absPath, err)
	}

	e.log.Info().
		Str("id", entry.ID).
		Str("stored_name", entry.StoredName).
		Str("mode", level.String()).
		Str("path", absPath).
		Msg("hidden")
	return entry, nil
}

// moveIn moves the source into the vault under a random name.
func (e *Engine) moveIn(src string, info fs.FileInfo, entry *Entry) (func() error, error) {
	mode := info.Mode()
	if !mode.IsRegular() && !mode.IsDir() && mode&fs.ModeSymlink == 0 {
		return nil, ErrUnsupportedType
	}

	name := uuid.NewString()
	if err := e.dir.MoveIn(src, name); err != nil {
		if errors.Is(err, vaultdir.ErrNameCollision) {
			return nil, err
		}
		return nil, ioErr(err)
	}

	entry.StoredName = name
	entry.Concealment = FastHide{DisplayName: filepath.Base(src)}
	entry.Perm = mode.Perm()
	if mode.IsRegular() {
		entry.Size = info.Size()
	}

	undo := func() error {
		return e.dir.MoveOut(name, src)
	}
	return undo, nil
}

// sealIn encrypts a regular file into "<base>.enc". The source is left in
// place.
func (e *Engine) sealIn(src string, info fs.FileInfo, entry *Entry) (func() error, error) {
	if !info.Mode().IsRegular() {
		return nil, ErrUnsupportedType
	}

	name := filepath.Base(src) + EncryptedSuffix
	if err := vaultdir.ValidateName(name); err != nil {
		return nil, err
	}

	c, err := e.cipherLocked()
	if err != nil {
		return nil, err
	}

	plaintext, err := os.ReadFile(src)
	if err != nil {
		return nil, ioErr(err)
	}
	defer crypto.ClearBytes(plaintext)

	f, err := e.dir.Create(name)
	if err != nil {
		if errors.Is(err, vaultdir.ErrNameCollision) {
			return nil, err
		}
		return nil, ioErr(err)
	}

	sealed, err := c.Seal(plaintext)
	if err == nil {
		_, err = f.Write(sealed)
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := e.dir.Remove(name); rmErr != nil {
			e.log.Warn().Err(rmErr).Str("stored_name", name).Msg("failed to remove partial vault object")
		}
		return nil, ioErr(err)
	}

	entry.StoredName = name
	entry.Concealment = Advanced{}
	entry.Size = int64(len(plaintext))
	entry.Perm = info.Mode().Perm()

	undo := func() error {
		return e.dir.Remove(name)
	}
	return undo, nil
}
