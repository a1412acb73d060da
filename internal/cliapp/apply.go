package cliapp

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/applyengine"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/history"
	"github.com/oxhq/identedit/internal/registry"
	"github.com/oxhq/identedit/internal/strictjson"
)

func newApplyCmd(reg *registry.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [CHANGESET_FILE]",
		Short: "Commit a Changeset to disk, all files or none",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := readChangeset(cmd, args)
			if err != nil {
				return emit(cmd.OutOrStdout(), nil, err)
			}

			summary, err := applyengine.Apply(reg, cs)
			recordHistory(summary, err, cs)
			if err != nil {
				return emit(cmd.OutOrStdout(), nil, err)
			}
			return emit(cmd.OutOrStdout(), summaryResult{Summary: summary}, nil)
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

type summaryResult struct {
	Summary handle.Summary `json:"summary"`
}

// readChangeset reads a Changeset from a positional path or stdin,
// rejecting the legacy single-file payload shape unless
// IDENTEDIT_ALLOW_LEGACY=1 (spec.md 6).
func readChangeset(cmd *cobra.Command, args []string) (handle.Changeset, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return handle.Changeset{}, apperr.Wrap(apperr.IOError, "opening changeset", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return handle.Changeset{}, apperr.Wrap(apperr.IOError, "reading changeset", err)
	}

	if err := strictjson.CheckDuplicateKeys(raw); err != nil {
		return handle.Changeset{}, err
	}

	var cs handle.Changeset
	if err := json.Unmarshal(raw, &cs); err == nil && cs.Files != nil {
		return cs, nil
	}

	if os.Getenv("IDENTEDIT_ALLOW_LEGACY") != "1" {
		return handle.Changeset{}, apperr.New(apperr.InvalidRequest, "legacy single-file changeset payload requires IDENTEDIT_ALLOW_LEGACY=1")
	}
	var legacy handle.LegacyChangeset
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return handle.Changeset{}, apperr.Wrap(apperr.InvalidRequest, "decoding changeset", err)
	}
	return legacy.Normalize(), nil
}

// recordHistory persists the apply outcome when IDENTEDIT_HISTORY_DSN is
// set. History is a side channel: failures to open or write the ledger
// never change apply's own result.
func recordHistory(summary handle.Summary, applyErr error, cs handle.Changeset) {
	dsn := os.Getenv("IDENTEDIT_HISTORY_DSN")
	if dsn == "" {
		return
	}
	ledger, err := history.Open(dsn)
	if err != nil {
		return
	}
	defer ledger.Close()

	files := make([]string, 0, len(cs.Files))
	for _, fc := range cs.Files {
		files = append(files, fc.File)
	}
	rec := history.ApplyRecord{
		FilesModified:     summary.FilesModified,
		OperationsApplied: summary.OperationsApplied,
		Succeeded:         applyErr == nil,
		Files:             joinLines(files),
	}
	if ae, ok := apperr.As(applyErr); ok {
		rec.ErrorType = string(ae.Type)
		rec.ErrorMessage = ae.Message
	}
	_ = ledger.Record(rec)
}

func joinLines(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}
