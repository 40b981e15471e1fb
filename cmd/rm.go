package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/cloak/internal/core"
)

// Remove permanently deletes hidden items
func Remove(ctx context.Context, ids []string, force bool) {
	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one ID\n")
		fmt.Fprintf(os.Stderr, "Usage: cloak rm [-f] <id> [id...]\n")
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

		if !force {
			question := fmt.Sprintf("Permanently delete hidden %s?", entry.OriginalPath)
			yes, err := core.Confirm(stdin, os.Stdout, question)
			if err != nil {
				HandleError(err)
			}
			if !yes {
				fmt.Println("Skipped")
				continue
			}
		}

		if err := app.Engine.Delete(ctx, entry.ID); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %s\n", entry.OriginalPath, Describe(err))
			failed = true
			continue
		}
		fmt.Printf("✓ Deleted %s\n", entry.OriginalPath)
	}

	if failed {
		os.Exit(1)
	}
}
