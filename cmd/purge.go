package cmd

import "fmt"

// Purge removes any staged plaintext left behind by 'cloak open'
func Purge() {
	app := OpenAppOrExit()
	defer app.Close()

	app.Engine.PurgeStaging()
	fmt.Println("✓ Staging area cleared")
}
