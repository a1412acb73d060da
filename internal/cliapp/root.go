package cliapp

import (
	"github.com/spf13/cobra"

	"github.com/oxhq/identedit/internal/registry"
)

// NewRootCmd builds identedit's cobra command tree: read/select,
// edit/transform, apply, changeset merge, grammar install. Grounded on
// the teacher's demo/cmd/main.go root+subcommand construction.
func NewRootCmd(reg *registry.Registry) *cobra.Command {
	root := &cobra.Command{
		Use:           "identedit",
		Short:         "Identity-addressed structural source editing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReadCmd(reg))
	root.AddCommand(newEditCmd(reg))
	root.AddCommand(newApplyCmd(reg))
	root.AddCommand(newChangesetCmd())
	root.AddCommand(newGrammarCmd())
	return root
}
