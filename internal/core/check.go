package core

import (
	"context"
	"errors"
	"io/fs"
	"sort"
)

// Report describes divergence between the manifest and the vault root.
type Report struct {
	// Missing are entries whose vault object is gone.
	Missing []Entry
	// Orphans are vault objects no entry refers to.
	Orphans []string
}

// Clean reports whether the vault and manifest agree.
func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Orphans) == 0
}

// Check compares the manifest with the vault contents.
func (e *Engine) Check(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if err := e.lock(); err != nil {
		return Report{}, err
	}
	defer e.opMu.Unlock()

	return e.checkLocked()
}

func (e *Engine) checkLocked() (Report, error) {
	names, err := e.dir.List()
	if err != nil {
		return Report{}, ioErr(err)
	}
	onDisk := make(map[string]bool, len(names))
	for _, n := range names {
		onDisk[n] = true
	}

	var report Report
	referenced := make(map[string]bool)
	for _, ent := range e.Entries() {
		referenced[ent.StoredName] = true
		if !onDisk[ent.StoredName] {
			report.Missing = append(report.Missing, ent)
		}
	}
	for _, n := range names {
		if !referenced[n] {
			report.Orphans = append(report.Orphans, n)
		}
	}
	sort.Strings(report.Orphans)
	return report, nil
}

// Prune drops entries whose vault object is missing and saves the manifest.
// Orphan objects are left alone.
func (e *Engine) Prune(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.lock(); err != nil {
		return 0, err
	}
	defer e.opMu.Unlock()

	report, err := e.checkLocked()
	if err != nil {
		return 0, err
	}
	if len(report.Missing) == 0 {
		return 0, nil
	}

	drop := make(map[string]bool, len(report.Missing))
	for _, ent := range report.Missing {
		// recheck right before dropping
		if _, err := e.dir.Stat(ent.StoredName); errors.Is(err, fs.ErrNotExist) {
			drop[ent.ID] = true
		}
	}

	kept := make([]Entry, 0)
	for _, ent := range e.Entries() {
		if !drop[ent.ID] {
			kept = append(kept, ent)
		}
	}

	if err := e.save(kept); err != nil {
		return 0, err
	}
	for id := range drop {
		e.log.Warn().Str("id", id).Msg("pruned entry with missing vault object")
	}
	return len(drop), nil
}
