package cmd

import (
	"context"
	"fmt"
	"os"
)

// Check reports entries and vault objects that disagree with each other
func Check(ctx context.Context, prune bool) {
	app := OpenUnlocked()
	defer app.Close()

	report, err := app.Engine.Check(ctx)
	if err != nil {
		app.Close()
		HandleError(err)
	}

	if report.Clean() {
		fmt.Println("✓ Vault is consistent")
		return
	}

	if len(report.Missing) > 0 {
		fmt.Printf("%d entry(ies) without a vault object:\n", len(report.Missing))
		for _, e := range report.Missing {
			fmt.Printf("  - %s (%s)\n", e.OriginalPath, e.ID)
		}
	}
	if len(report.Orphans) > 0 {
		fmt.Printf("%d vault object(s) without an entry:\n", len(report.Orphans))
		for _, name := range report.Orphans {
			fmt.Printf("  - %s\n", app.Dir.Path(name))
		}
		fmt.Println("Orphaned objects are never deleted automatically")
	}

	if !prune {
		if len(report.Missing) > 0 {
			fmt.Println("Run 'cloak check --prune' to drop entries without a vault object")
		}
		app.Close()
		os.Exit(1)
	}

	n, err := app.Engine.Prune(ctx)
	if err != nil {
		app.Close()
		HandleError(err)
	}
	fmt.Printf("✓ Pruned %d entry(ies)\n", n)
}
