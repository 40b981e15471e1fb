package core

import (
	"context"
	"errors"
	"io/fs"
)

// Delete destroys the vault object and removes the entry. Failure to remove
// the object is logged, not returned.
func (e *Engine) Delete(ctx context.Context, id string) error {
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

	if err := e.dir.RemoveAll(entry.StoredName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.log.Warn().Err(err).Str("id", entry.ID).Str("stored_name", entry.StoredName).Msg("failed to remove vault object")
	}

	if err := e.save(e.without(entry.ID)); err != nil {
		e.publish(e.without(entry.ID))
		return fileErr("delete", entry.OriginalPath, err)
	}

	e.log.Info().Str("id", entry.ID).Msg("deleted")
	return nil
}
