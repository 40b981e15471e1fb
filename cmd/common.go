package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/cloak/internal/config"
	"github.com/illarion/cloak/internal/core"
	"github.com/illarion/cloak/internal/crypto"
	"github.com/illarion/cloak/internal/keystore"
	"github.com/illarion/cloak/internal/storage"
	"github.com/illarion/cloak/internal/vaultdir"
	"github.com/illarion/cloak/internal/workers"
)

// stdin is shared by every prompt so buffered input is not lost between them
var stdin = bufio.NewReader(os.Stdin)

// GetPassword retrieves password from environment or prompts user
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(prompt string) ([]byte, error) {
	password := core.GetPasswordFromEnv()
	if password != nil {
		return password, nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// GetPasswordForInit checks the environment first, then prompts with
// confirmation
func GetPasswordForInit() ([]byte, error) {
	password := core.GetPasswordFromEnv()
	if password != nil {
		return password, nil
	}

	return core.ReadPasswordConfirm()
}

// Authenticate checks the master password against the stored credential
func Authenticate(app *App) error {
	has, err := app.Keys.HasCredential()
	if err != nil {
		return err
	}
	if !has {
		return keystore.ErrNoCredential
	}

	password, err := GetPassword("Enter master password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := app.Keys.Authenticate(password); err != nil {
		app.Log.Warn().Msg("authentication failed")
		return err
	}
	return nil
}

// HandleError prints a message for err and exits
func HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", Describe(err))
	if hint := hintFor(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	os.Exit(1)
}

// Describe returns the user-facing message for err
func Describe(err error) string {
	switch {
	case errors.Is(err, keystore.ErrNoCredential):
		return "cloak is not initialized"
	case errors.Is(err, keystore.ErrCredentialExists):
		return "cloak is already initialized"
	case errors.Is(err, keystore.ErrWrongPassword):
		return "wrong password"
	case errors.Is(err, keystore.ErrKeyStoreUnavailable):
		return "the system keyring is unavailable or its cloak items are damaged"
	case errors.Is(err, crypto.ErrAuthFailed):
		return "hidden file is corrupted or was encrypted with a different key"
	case errors.Is(err, storage.ErrManifestCorrupt):
		return fmt.Sprintf("vault manifest is damaged: %s", err)
	case errors.Is(err, core.ErrLevelUnspecified):
		return "no security level chosen"
	case errors.Is(err, core.ErrInsideVault):
		return fmt.Sprintf("cannot hide cloak's own files: %s", err)
	case errors.Is(err, workers.ErrBusy):
		return "another hide batch is still running"
	case errors.Is(err, core.ErrPersistenceFailed):
		return fmt.Sprintf("the file operation succeeded but the manifest could not be saved: %s", err)
	case errors.Is(err, config.ErrRelativePath), errors.Is(err, config.ErrInvalidGrace), errors.Is(err, config.ErrOverlappingDirs):
		return fmt.Sprintf("invalid configuration: %s", err)
	default:
		return err.Error()
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, keystore.ErrNoCredential), errors.Is(err, core.ErrLevelUnspecified):
		return "Run 'cloak init' first"
	case errors.Is(err, keystore.ErrCredentialExists):
		return "Use 'cloak level' to change the security level"
	case errors.Is(err, storage.ErrManifestCorrupt):
		return "Restore manifest.json from a backup or move it aside to start over; vault objects are untouched"
	case errors.Is(err, core.ErrDestinationOccupied):
		return "Move the existing file away, or compare with 'cloak diff <id>'"
	case errors.Is(err, vaultdir.ErrNameCollision):
		return "A hidden file with the same name already exists; unhide or remove it first"
	case errors.Is(err, core.ErrPersistenceFailed):
		return "Run 'cloak check' to find entries that disagree with the vault"
	}
	return ""
}

// resolve maps an ID or unique prefix to an entry, printing failures
func resolve(app *App, id string) (core.Entry, bool) {
	entry, err := app.Engine.Lookup(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", Describe(err))
		return core.Entry{}, false
	}
	return entry, true
}
