package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/illarion/cloak/internal/core"
	"github.com/illarion/cloak/internal/crypto"
)

type initStep int

const (
	initFresh    initStep = iota // set password and level
	initResume                   // password stored, level never saved
	initComplete                 // nothing to do
)

func initStepFor(hasCredential, setupComplete bool) initStep {
	switch {
	case hasCredential && setupComplete:
		return initComplete
	case hasCredential:
		return initResume
	default:
		return initFresh
	}
}

// Init sets the master password and the security level
func Init(levelArg string) {
	app := OpenAppOrExit()
	defer app.Close()

	has, err := app.Keys.HasCredential()
	if err != nil {
		HandleError(err)
	}
	done, err := app.Engine.SetupComplete()
	if err != nil {
		HandleError(err)
	}
	step := initStepFor(has, done)
	if step == initComplete {
		fmt.Fprintf(os.Stderr, "Error: cloak is already initialized\n")
		fmt.Fprintf(os.Stderr, "Use 'cloak level' to change the security level\n")
		os.Exit(1)
	}
	if step == initResume {
		// an earlier init stored the password but never saved a level
		fmt.Println("Master password already set, finishing setup")
		if err := Authenticate(app); err != nil {
			HandleError(err)
		}
	}

	if levelArg == "" {
		levelArg, err = promptLevel()
		if err != nil {
			HandleError(err)
		}
	}
	level, err := core.ParseLevel(levelArg)
	if err != nil {
		HandleError(err)
	}
	if level == core.LevelUnspecified {
		HandleError(core.ErrLevelUnspecified)
	}

	if step == initFresh {
		password, err := GetPasswordForInit()
		if err != nil {
			HandleError(err)
		}
		_, _, err = app.Keys.SetMasterCredential(password)
		crypto.ClearBytes(password)
		if err != nil {
			HandleError(err)
		}
	}

	// Create the encryption key now so the first hide does not race for it.
	key, err := app.Keys.GetOrCreateKey()
	if err != nil {
		HandleError(err)
	}
	crypto.ClearBytes(key)

	if err := app.Engine.SetLevel(level); err != nil {
		HandleError(err)
	}

	app.Log.Info().Str("level", level.String()).Msg("initialized")
	fmt.Printf("✓ Initialized cloak (security level: %s)\n", level)
	fmt.Printf("  Vault: %s\n", app.Dir.Root())
}

func promptLevel() (string, error) {
	fmt.Println("Choose a security level:")
	fmt.Println("  1) fast-hide  move items into the vault under random names")
	fmt.Println("  2) advanced   encrypt files with AES-256-GCM")
	fmt.Print("Level [1/2]: ")

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read security level: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		return core.LevelFastHide.String(), nil
	case "2":
		return core.LevelAdvanced.String(), nil
	default:
		return strings.TrimSpace(line), nil
	}
}
