// Package cliapp wires identedit's cobra command tree, pflag flag sets,
// and stdout JSON emission for each verb, grounded on the teacher's
// demo/cmd/main.go (cobra root+subcommands) and cmd/morfx/main.go /
// internal/config/cli.go (pflag flag sets, output dispatch).
package cliapp

import (
	"github.com/oxhq/identedit/internal/langfallback"
	"github.com/oxhq/identedit/internal/langgo"
	"github.com/oxhq/identedit/internal/langjavascript"
	"github.com/oxhq/identedit/internal/langphp"
	"github.com/oxhq/identedit/internal/langpython"
	"github.com/oxhq/identedit/internal/langtypescript"
	"github.com/oxhq/identedit/internal/manifest"
	"github.com/oxhq/identedit/internal/registry"
)

// NewRegistry builds the registry identedit ships: every bundled
// tree-sitter provider, the line/fallback provider, and any dynamic
// providers found in the grammar manifest (spec.md 4.2's routing order).
func NewRegistry() *registry.Registry {
	reg := registry.New()
	_ = reg.RegisterBundled(langgo.New())
	_ = reg.RegisterBundled(langpython.New())
	_ = reg.RegisterBundled(langjavascript.New())
	_ = reg.RegisterBundled(langtypescript.New())
	_ = reg.RegisterBundled(langphp.New())
	reg.SetFallback(langfallback.New())
	manifest.ApplyTo(manifest.Home(), reg)
	return reg
}
