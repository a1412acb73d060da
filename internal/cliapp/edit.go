package cliapp

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/changeset"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/registry"
	"github.com/oxhq/identedit/internal/source"
	"github.com/oxhq/identedit/internal/strictjson"
)

// editJSONRequest is the JSON-mode payload edit's --json flag accepts
// from stdin: one file and a list of raw operation requests.
type editJSONRequest struct {
	Command    string              `json:"command"`
	File       string              `json:"file"`
	Operations []editJSONOperation `json:"operations"`
}

type editJSONOperation struct {
	Identity        string           `json:"identity"`
	Kind            string           `json:"kind"`
	SpanHint        *handle.SpanHint `json:"span_hint,omitempty"`
	ExpectedOldHash string           `json:"expected_old_hash"`
	Op              handle.OpKind    `json:"op"`
	NewText         string           `json:"new_text,omitempty"`
	MoveTo          string           `json:"to,omitempty"`
}

func newEditCmd(reg *registry.Registry) *cobra.Command {
	var (
		ident      string
		replace    string
		deleteFlag bool
		jsonMode   bool
		oldHash    string
	)

	cmd := &cobra.Command{
		Use:     "edit [flags] FILE",
		Aliases: []string{"transform"},
		Short:   "Compose one or more operations into a pure, unwritten Changeset",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return emit(cmd.OutOrStdout(), nil, apperr.Wrap(apperr.IOError, "reading JSON request", err))
				}
				if err := strictjson.CheckDuplicateKeys(raw); err != nil {
					return emit(cmd.OutOrStdout(), nil, err)
				}
				var in editJSONRequest
				if err := json.Unmarshal(raw, &in); err != nil {
					return emit(cmd.OutOrStdout(), nil, apperr.Wrap(apperr.InvalidRequest, "decoding JSON request", err))
				}
				cs, err := buildFromJSON(reg, in)
				return emitChangeset(cmd, cs, err)
			}

			if len(args) != 1 {
				return emit(cmd.OutOrStdout(), nil, apperr.New(apperr.InvalidRequest, "FILE is required in flag mode"))
			}
			if ident == "" {
				return emit(cmd.OutOrStdout(), nil, apperr.New(apperr.InvalidRequest, "--identity is required in flag mode"))
			}
			if (replace == "") == !deleteFlag {
				return emit(cmd.OutOrStdout(), nil, apperr.New(apperr.InvalidRequest, "exactly one of --replace or --delete is required"))
			}

			op := handle.OpDelete
			newText := ""
			if !deleteFlag {
				op = handle.OpReplace
				newText = replace
			}

			cs, err := buildSingle(reg, args[0], handle.Target{
				Variant:         handle.VariantNode,
				Identity:        ident,
				ExpectedOldHash: oldHash,
			}, op, newText, "")
			return emitChangeset(cmd, cs, err)
		},
	}

	cmd.Flags().StringVar(&ident, "identity", "", "identity of the node to edit (required in flag mode)")
	cmd.Flags().StringVar(&replace, "replace", "", "replacement text")
	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "delete the targeted node")
	cmd.Flags().StringVar(&oldHash, "old-hash", "", "expected_old_hash precondition")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "read the request as JSON from stdin")
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

func buildSingle(reg *registry.Registry, file string, target handle.Target, op handle.OpKind, newText, moveTo string) (handle.Changeset, error) {
	src, err := source.Load(file)
	if err != nil {
		return handle.Changeset{}, err
	}
	operation, err := changeset.BuildOperation(reg, src, target, op, newText, moveTo)
	if err != nil {
		return handle.Changeset{}, err
	}
	if err := changeset.Validate(handle.Changeset{Files: []handle.FileChange{{File: file, Operations: []handle.Operation{operation}}}}); err != nil {
		return handle.Changeset{}, err
	}
	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{{File: file, Operations: []handle.Operation{operation}}}
	return cs, nil
}

func buildFromJSON(reg *registry.Registry, in editJSONRequest) (handle.Changeset, error) {
	src, err := source.Load(in.File)
	if err != nil {
		return handle.Changeset{}, err
	}

	ops := make([]handle.Operation, 0, len(in.Operations))
	for _, o := range in.Operations {
		target := handle.Target{
			Variant:         handle.VariantNode,
			Identity:        o.Identity,
			Kind:            o.Kind,
			ExpectedOldHash: o.ExpectedOldHash,
			SpanHint:        o.SpanHint,
		}
		operation, err := changeset.BuildOperation(reg, src, target, o.Op, o.NewText, o.MoveTo)
		if err != nil {
			return handle.Changeset{}, err
		}
		ops = append(ops, operation)
	}

	fc := handle.FileChange{File: in.File, Operations: ops}
	if err := changeset.Validate(handle.Changeset{Files: []handle.FileChange{fc}}); err != nil {
		return handle.Changeset{}, err
	}
	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{fc}
	return cs, nil
}

func emitChangeset(cmd *cobra.Command, cs handle.Changeset, err error) error {
	if err != nil {
		return emit(cmd.OutOrStdout(), nil, err)
	}
	return emit(cmd.OutOrStdout(), changesetResult{Changeset: cs}, nil)
}

type changesetResult struct {
	Changeset handle.Changeset `json:"changeset"`
}
