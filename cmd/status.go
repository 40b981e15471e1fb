package cmd

import (
	"fmt"
	"time"

	"github.com/illarion/cloak/internal/core"
)

// Status shows the vault location, security level and hidden items
func Status() {
	app := OpenUnlocked()
	defer app.Close()

	entries := app.Engine.Entries()

	var fast, advanced int
	var total int64
	for _, e := range entries {
		switch e.Level() {
		case core.LevelFastHide:
			fast++
		case core.LevelAdvanced:
			advanced++
		}
		total += e.Size
	}

	fmt.Printf("Vault:          %s\n", app.Dir.Root())
	fmt.Printf("Security level: %s\n", app.Engine.Level())
	fmt.Printf("Hidden items:   %d (%d fast-hide, %d advanced, %s)\n",
		len(entries), fast, advanced, formatSize(total))
	if modified, err := app.Settings.GetModified(); err == nil {
		fmt.Printf("Settings saved: %s\n", modified.Local().Format(time.DateTime))
	}

	if len(entries) == 0 {
		return
	}
	fmt.Println()
	printEntries(entries)
}
