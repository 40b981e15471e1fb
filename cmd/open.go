package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// Open stages a hidden item and hands it to the system viewer. Staged
// plaintext is purged when the user is done, or after the grace period when
// there is no terminal to ask.
func Open(ctx context.Context, id string) {
	if id == "" {
		fmt.Fprintf(os.Stderr, "Error: open requires an ID\n")
		fmt.Fprintf(os.Stderr, "Usage: cloak open <id>\n")
		os.Exit(1)
	}

	app := OpenUnlocked()
	defer app.Close()

	entry, ok := resolve(app, id)
	if !ok {
		app.Close()
		os.Exit(1)
	}

	staged, err := app.Engine.Open(ctx, entry.ID)
	if err != nil {
		if staged == "" {
			app.Close()
			HandleError(err)
		}
		fmt.Fprintf(os.Stderr, "warning: could not launch a viewer: %s\n", Describe(err))
	}
	fmt.Printf("Staged %s at %s\n", entry.DisplayName(), staged)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Press Enter when done viewing to remove the staged copy...")
		stdin.ReadString('\n')
		app.Engine.PurgeStaging()
		fmt.Println("✓ Staged copy removed")
		return
	}

	grace := app.Config.StagingGrace
	fmt.Printf("Staged copy will be removed in %s\n", grace)
	app.Engine.OnForegroundLost()
	select {
	case <-ctx.Done():
	case <-time.After(grace):
	}
}
