package cmd

import (
	"fmt"

	"github.com/illarion/cloak/internal/core"
)

// Level shows or changes the security level used for new hides
func Level(arg string) {
	app := OpenUnlocked()
	defer app.Close()

	if arg == "" {
		fmt.Printf("Security level: %s\n", app.Engine.Level())
		return
	}

	level, err := core.ParseLevel(arg)
	if err != nil {
		HandleError(err)
	}
	if level == core.LevelUnspecified {
		HandleError(core.ErrLevelUnspecified)
	}

	if err := app.Engine.SetLevel(level); err != nil {
		HandleError(err)
	}
	fmt.Printf("✓ Security level set to %s\n", level)
	fmt.Println("  Items already hidden keep the level they were hidden with")
}
