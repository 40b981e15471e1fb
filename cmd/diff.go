package cmd

import (
	"context"
	"fmt"
	"os"
)

// Diff compares a hidden item with whatever sits at its original path
func Diff(ctx context.Context, id string) {
	if id == "" {
		fmt.Fprintf(os.Stderr, "Error: diff requires an ID\n")
		fmt.Fprintf(os.Stderr, "Usage: cloak diff <id>\n")
		os.Exit(1)
	}

	app := OpenUnlocked()
	defer app.Close()

	entry, ok := resolve(app, id)
	if !ok {
		app.Close()
		os.Exit(1)
	}

	diff, err := app.Engine.Compare(ctx, entry.ID)
	if err != nil {
		app.Close()
		HandleError(err)
	}

	if diff == "" {
		fmt.Printf("%s: hidden copy is identical to the file on disk\n", entry.OriginalPath)
		return
	}
	fmt.Print(diff)
}
