package cmd

import (
	"fmt"
)

// Key reports whether the encryption key and master credential are present
// in the system keyring
func Key() {
	app := OpenAppOrExit()
	defer app.Close()

	hasKey, err := app.Keys.HasKey()
	if err != nil {
		app.Close()
		HandleError(err)
	}
	hasCred, err := app.Keys.HasCredential()
	if err != nil {
		app.Close()
		HandleError(err)
	}

	fmt.Printf("Keyring service:   %s\n", app.Config.KeyringService)
	fmt.Printf("Encryption key:    %s\n", presence(hasKey))
	fmt.Printf("Master credential: %s\n", presence(hasCred))
	if !hasCred {
		fmt.Println("Run 'cloak init' to set a master password")
	}
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
