package workers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/illarion/cloak/internal/core"
	"github.com/illarion/cloak/internal/logger"
)

var ErrBusy = errors.New("a hide batch is already running")

// Progress is published after each item.
type Progress struct {
	Index int // 1-based
	Total int
	Path  string
	Err   error
}

// Failure is one item that could not be hidden.
type Failure struct {
	Path string
	Err  error
}

// Summary is the outcome of a batch.
type Summary struct {
	Succeeded int
	Failures  []Failure
	Level     core.Level
}

// Status is a pollable view of the runner.
type Status struct {
	Processing bool
	Text       string
}

// Job is one running batch.
type Job struct {
	progress chan Progress
	done     chan struct{}
	summary  Summary
}

// Progress returns the per-item channel. It is buffered to the batch size
// and closed when the batch ends.
func (j *Job) Progress() <-chan Progress {
	return j.progress
}

// Wait blocks until the batch ends and returns its summary.
func (j *Job) Wait() Summary {
	<-j.done
	return j.summary
}

type original struct {
	id   string
	path string
}

// HideRunner executes hide batches one at a time.
type HideRunner struct {
	hider Hider
	log   *logger.Logger

	mu      sync.Mutex
	running bool
	status  Status
	pending []original
}

// NewHideRunner returns a runner over hider.
func NewHideRunner(hider Hider, log *logger.Logger) *HideRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &HideRunner{hider: hider, log: log.Component("workers")}
}

// Start launches a batch with the engine's current level.
func (r *HideRunner) Start(ctx context.Context, paths []string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil, ErrBusy
	}
	level := r.hider.Level()
	if level == core.LevelUnspecified {
		return nil, core.ErrLevelUnspecified
	}

	job := &Job{
		progress: make(chan Progress, len(paths)),
		done:     make(chan struct{}),
		summary:  Summary{Level: level},
	}

	r.running = true
	r.pending = nil
	r.status = Status{Processing: true, Text: fmt.Sprintf("Hiding 0/%d", len(paths))}

	r.log.Info().Int("total", len(paths)).Str("level", level.String()).Msg("hide batch started")
	go r.run(ctx, job, paths, level)
	return job, nil
}

func (r *HideRunner) run(ctx context.Context, job *Job, paths []string, level core.Level) {
	var hidden []original
	total := len(paths)

	for i, path := range paths {
		r.setStatus(fmt.Sprintf("Hiding %d/%d: %s", i+1, total, filepath.Base(path)))

		var err error
		if err = ctx.Err(); err == nil {
			var entry core.Entry
			entry, err = r.hider.Hide(ctx, path, level)
			if err == nil {
				job.summary.Succeeded++
				hidden = append(hidden, original{id: entry.ID, path: entry.OriginalPath})
			}
		}
		if err != nil {
			job.summary.Failures = append(job.summary.Failures, Failure{Path: path, Err: err})
			r.log.Warn().Err(err).Str("path", path).Msg("hide failed")
		}

		job.progress <- Progress{Index: i + 1, Total: total, Path: path, Err: err}
	}

	r.mu.Lock()
	// fast-hide already moved the sources away
	if level == core.LevelAdvanced {
		r.pending = hidden
	}
	r.running = false
	r.status = Status{}
	r.mu.Unlock()

	r.log.Info().
		Int("succeeded", job.summary.Succeeded).
		Int("failed", len(job.summary.Failures)).
		Msg("hide batch finished")

	close(job.progress)
	close(job.done)
}

func (r *HideRunner) setStatus(text string) {
	r.mu.Lock()
	r.status = Status{Processing: true, Text: text}
	r.mu.Unlock()
}

// Snapshot returns the current status.
func (r *HideRunner) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// PendingOriginals lists source files of the last Advanced batch that are
// awaiting a delete-or-keep decision.
func (r *HideRunner) PendingOriginals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, len(r.pending))
	for i, o := range r.pending {
		paths[i] = o.path
	}
	return paths
}

// ConfirmDeleteOriginals removes the pending source files whose entries
// are still in the vault. It returns how many were removed.
func (r *HideRunner) ConfirmDeleteOriginals() (int, error) {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return 0, nil
	}

	live := make(map[string]bool)
	for _, e := range r.hider.Entries() {
		live[e.ID] = true
	}

	var (
		removed int
		errs    []error
	)
	for _, o := range pending {
		if !live[o.id] {
			// unhidden since; the file at this path is the restored copy
			r.log.Debug().Str("id", o.id).Str("path", o.path).Msg("skipping original, entry gone")
			continue
		}
		if err := os.Remove(o.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("remove %s: %w", o.path, err))
			continue
		}
		removed++
	}

	r.log.Info().Int("removed", removed).Msg("originals deleted")
	return removed, errors.Join(errs...)
}

// KeepOriginals drops the pending delete-originals offer.
func (r *HideRunner) KeepOriginals() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}
