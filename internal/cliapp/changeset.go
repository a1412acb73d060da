package cliapp

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/changeset"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/strictjson"
)

func newChangesetCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "changeset",
		Short: "Operate on Changeset documents",
	}
	root.AddCommand(newChangesetMergeCmd())
	return root
}

func newChangesetMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge CHANGESET_FILE CHANGESET_FILE [CHANGESET_FILE...]",
		Short: "Merge two or more Changeset documents into one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := make([]handle.Changeset, 0, len(args))
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return emit(cmd.OutOrStdout(), nil, apperr.Wrap(apperr.IOError, "reading changeset", err))
				}
				if err := strictjson.CheckDuplicateKeys(raw); err != nil {
					return emit(cmd.OutOrStdout(), nil, err)
				}
				var cs handle.Changeset
				if err := json.Unmarshal(raw, &cs); err != nil {
					return emit(cmd.OutOrStdout(), nil, apperr.Wrap(apperr.InvalidRequest, "decoding changeset "+path, err))
				}
				sets = append(sets, cs)
			}
			merged, err := changeset.Merge(sets...)
			if err != nil {
				return emit(cmd.OutOrStdout(), nil, err)
			}
			return emit(cmd.OutOrStdout(), changesetResult{Changeset: merged}, nil)
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}
