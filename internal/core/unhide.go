package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/illarion/cloak/internal/crypto"
)

// Unhide restores the entry to its original path and removes it from the
// manifest. The entry is kept when the destination is occupied or the
// sealed object fails to authenticate.
func (e *Engine) Unhide(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.lock(); err != nil {
		return err
	}
	defer e.opMu.Unlock()

	entry, err := e.find(id)
	if err != nil {
		return err
	}

	dst := entry.OriginalPath
	if _, err := os.Lstat(dst); err == nil {
		return fileErr("unhide", dst, ErrDestinationOccupied)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fileErr("unhide", dst, ioErr(err))
	}

	switch entry.Concealment.(type) {
	case FastHide:
		err = e.moveOut(entry)
	case Advanced:
		err = e.unseal(entry)
	default:
		err = fmt.Errorf("entry %s has no concealment", entry.ID)
	}
	if err != nil {
		return fileErr("unhide", dst, err)
	}

	if err := e.save(e.without(entry.ID)); err != nil {
		// the item is back in place; drop it from memory regardless
		e.publish(e.without(entry.ID))
		e.log.Error().Err(err).Str("id", entry.ID).Msg("manifest save failed after unhide")
		return fileErr("unhide", dst, err)
	}

	e.log.Info().Str("id", entry.ID).Str("path", dst).Msg("unhidden")
	return nil
}

func (e *Engine) moveOut(entry Entry) error {
	if err := e.dir.MoveOut(entry.StoredName, entry.OriginalPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrDestinationOccupied
		}
		return ioErr(err)
	}
	return nil
}

// unseal decrypts the vault object to the original path, then removes the
// object. If the object cannot be removed the restored file is deleted
// again so the vault and manifest stay in step.
func (e *Engine) unseal(entry Entry) error {
	blob, err := e.dir.ReadFile(entry.StoredName)
	if err != nil {
		return ioErr(err)
	}

	c, err := e.cipherLocked()
	if err != nil {
		return err
	}

	plaintext, err := c.Open(blob)
	if err != nil {
		e.log.Warn().Str("id", entry.ID).Str("stored_name", entry.StoredName).Msg("sealed object failed authentication")
		return err
	}
	defer crypto.ClearBytes(plaintext)

	dst := entry.OriginalPath
	if err := writeExclusive(dst, plaintext, entry.Perm); err != nil {
		return err
	}

	if err := e.dir.Remove(entry.StoredName); err != nil {
		os.Remove(dst)
		return ioErr(fmt.Errorf("failed to remove vault object: %w", err))
	}
	return nil
}

// writeExclusive creates path (and missing parents) with perm and writes
// data. A zero perm means FilePermSecure. An existing file is
// ErrDestinationOccupied; a partial file is removed.
func writeExclusive(path string, data []byte, perm fs.FileMode) error {
	if perm == 0 {
		perm = FilePermSecure
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermSecure); err != nil {
		return ioErr(err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePermSecure)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrDestinationOccupied
		}
		return ioErr(err)
	}

	_, err = f.Write(data)
	if err == nil {
		// the create mode is subject to umask
		err = f.Chmod(perm)
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return ioErr(err)
	}
	return nil
}
