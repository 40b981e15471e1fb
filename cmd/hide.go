package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/cloak/internal/core"
	"github.com/illarion/cloak/internal/workers"
)

// Hide runs a hide batch over the given paths
func Hide(ctx context.Context, patterns []string, remove, keep bool) {
	if len(patterns) == 0 {
		fmt.Fprintf(os.Stderr, "Error: hide requires at least one path\n")
		fmt.Fprintf(os.Stderr, "Usage: cloak hide [-r|--remove] [--keep] <path> [path...]\n")
		os.Exit(1)
	}
	if remove && keep {
		fmt.Fprintf(os.Stderr, "error: --remove and --keep are mutually exclusive\n")
		os.Exit(1)
	}

	paths, err := expandPatterns(patterns)
	if err != nil {
		HandleError(err)
	}

	app := OpenUnlocked()
	defer app.Close()

	runner := workers.NewHideRunner(app.Engine, app.Log)
	job, err := runner.Start(ctx, paths)
	if err != nil {
		HandleError(err)
	}

	for p := range job.Progress() {
		if p.Err != nil {
			fmt.Fprintf(os.Stderr, "  [%d/%d] %s: %s\n", p.Index, p.Total, p.Path, Describe(p.Err))
			continue
		}
		fmt.Printf("  [%d/%d] %s\n", p.Index, p.Total, p.Path)
	}
	summary := job.Wait()

	fmt.Printf("%d item(s) have been hidden successfully.\n", summary.Succeeded)
	if len(summary.Failures) > 0 {
		fmt.Fprintf(os.Stderr, "%d item(s) failed\n", len(summary.Failures))
	}

	pending := runner.PendingOriginals()
	if summary.Level != core.LevelAdvanced || len(pending) == 0 {
		exitOnFailures(summary)
		return
	}

	del := remove
	if !remove && !keep {
		question := fmt.Sprintf("Delete the %d original file(s) now that encrypted copies are in the vault?", len(pending))
		del, err = core.Confirm(stdin, os.Stdout, question)
		if err != nil {
			HandleError(err)
		}
	}

	if !del {
		runner.KeepOriginals()
		fmt.Println("Originals kept")
		exitOnFailures(summary)
		return
	}

	n, err := runner.ConfirmDeleteOriginals()
	fmt.Printf("✓ Deleted %d original file(s)\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: some originals could not be deleted: %s\n", err)
	}
	exitOnFailures(summary)
}

func exitOnFailures(summary workers.Summary) {
	if len(summary.Failures) > 0 {
		os.Exit(1)
	}
}

// expandPatterns resolves shell-style globs. Arguments without glob
// characters are passed through so that missing paths are reported per item.
func expandPatterns(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			add(pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
