package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/cloak/internal/crypto"
	"github.com/illarion/cloak/internal/vaultdir"
)

// Open stages a plaintext copy of the entry and hands it to the viewer.
// It returns the staged path. The vault object is not modified.
func (e *Engine) Open(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	staged, err := e.stage(id)
	if err != nil {
		return "", err
	}

	if e.viewer == nil {
		return staged, nil
	}
	if err := e.viewer.Open(ctx, staged); err != nil {
		return staged, fmt.Errorf("failed to open viewer: %w", err)
	}
	return staged, nil
}

func (e *Engine) stage(id string) (string, error) {
	if err := e.lock(); err != nil {
		return "", err
	}
	defer e.opMu.Unlock()

	entry, err := e.find(id)
	if err != nil {
		return "", err
	}

	e.dir.PurgeStaging()
	staging, err := e.dir.StagingDir(true)
	if err != nil {
		return "", fileErr("open", entry.OriginalPath, ioErr(err))
	}

	name := filepath.Base(entry.DisplayName())
	if name == "." || name == string(filepath.Separator) {
		name = entry.ID
	}
	dst := filepath.Join(staging, name)

	switch entry.Concealment.(type) {
	case FastHide:
		os.RemoveAll(dst)
		if err := vaultdir.CopyTree(e.dir.Path(entry.StoredName), dst); err != nil {
			os.RemoveAll(dst)
			return "", fileErr("open", entry.OriginalPath, ioErr(err))
		}
	case Advanced:
		if err := e.decryptTo(entry, dst); err != nil {
			return "", fileErr("open", entry.OriginalPath, err)
		}
	}

	e.log.Debug().Str("id", entry.ID).Msg("staged for viewing")
	return dst, nil
}

func (e *Engine) decryptTo(entry Entry, dst string) error {
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
		return err
	}
	defer crypto.ClearBytes(plaintext)

	// overwrite whatever is left from an earlier preview
	if err := os.WriteFile(dst, plaintext, FilePermSecure); err != nil {
		os.Remove(dst)
		return ioErr(err)
	}
	return nil
}

// PurgeStaging removes all staged plaintext now.
func (e *Engine) PurgeStaging() {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.dir.PurgeStaging()
}

// OnForegroundLost schedules a staging purge after the grace period,
// replacing any pending one.
func (e *Engine) OnForegroundLost() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	if e.purgeTimer != nil {
		e.purgeTimer.Stop()
	}
	e.purgeTimer = time.AfterFunc(e.grace, func() {
		e.log.Debug().Msg("grace period expired, purging staging")
		e.PurgeStaging()
	})
}

// OnForegroundGained cancels a pending staging purge.
func (e *Engine) OnForegroundGained() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	if e.purgeTimer != nil {
		e.purgeTimer.Stop()
		e.purgeTimer = nil
	}
}
