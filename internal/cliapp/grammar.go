package cliapp

import (
	"github.com/spf13/cobra"

	"github.com/oxhq/identedit/internal/grammarinstall"
	"github.com/oxhq/identedit/internal/manifest"
)

func newGrammarCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "grammar",
		Short: "Manage dynamically loaded language grammars",
	}
	root.AddCommand(newGrammarInstallCmd())
	return root
}

func newGrammarInstallCmd() *cobra.Command {
	var (
		repo   string
		symbol string
		ext    string
	)
	cmd := &cobra.Command{
		Use:   "install LANG",
		Short: "Build and register a language grammar plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := grammarinstall.Request{Lang: args[0], Repo: repo, Symbol: symbol, Ext: ext}
			err := grammarinstall.Install(manifest.Home(), req)
			if err != nil {
				return emit(cmd.OutOrStdout(), nil, err)
			}
			return emit(cmd.OutOrStdout(), grammarInstallResult{Lang: args[0], Installed: true}, nil)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "path to the grammar's source repo")
	cmd.Flags().StringVar(&symbol, "symbol", "", "exported plugin symbol (default Provider)")
	cmd.Flags().StringVar(&ext, "ext", "", "file extension this grammar handles (required without --repo)")
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

type grammarInstallResult struct {
	Lang      string `json:"lang"`
	Installed bool   `json:"installed"`
}
