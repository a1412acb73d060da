// Command identedit is the CLI entry point for identity-addressed
// structural source editing: read, edit, apply, changeset merge, and
// grammar install.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oxhq/identedit/internal/cliapp"
)

func main() {
	_ = godotenv.Load()

	reg := cliapp.NewRegistry()
	root := cliapp.NewRootCmd(reg)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
