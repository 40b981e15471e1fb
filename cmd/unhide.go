package cmd

import (
	"context"
	"fmt"
	"os"
)

// Unhide restores entries to their original paths
func Unhide(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "Error: unhide requires at least one ID\n")
		fmt.Fprintf(os.Stderr, "Usage: cloak unhide <id> [id...]\n")
		os.Exit(1)
	}

	app := OpenUnlocked()
	defer app.Close()

	failed := false
	for _, id := range ids {
		entry, ok := resolve(app, id)
		if !ok {
			failed = true
			continue
		}
		if err := app.Engine.Unhide(ctx, entry.ID); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %s\n", entry.OriginalPath, Describe(err))
			if hint := hintFor(err); hint != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", hint)
			}
			failed = true
			continue
		}
		fmt.Printf("✓ Restored %s\n", entry.OriginalPath)
	}

	if failed {
		os.Exit(1)
	}
}
