// Package provider defines the LanguageProvider contract identedit's core
// consumes: an opaque parser/extractor per language, grounded on the
// teacher's internal/provider package but narrowed to exactly the two
// operations spec.md 4.2 requires of the engine (the teacher itself carries
// two incompatible LanguageProvider interfaces across contract.go and
// provider.go — evidence of an in-progress interface redesign; identedit
// picks a single, narrower shape rather than inheriting both).
package provider

import "github.com/oxhq/identedit/internal/apperr"

// RawNode is one candidate syntax node surfaced by a provider's Extract,
// before identedit computes identity/hash and wraps it into a Handle.
type RawNode struct {
	Kind  string
	Name  string // optional; empty if the provider can't name this kind
	Start int
	End   int
}

// Tree is an opaque parsed syntax tree handed back to Extract. Providers
// define their own concrete type satisfying this; identedit's core never
// inspects it directly.
type Tree interface {
	// HasErrors reports whether the parse produced any syntax errors.
	HasErrors() bool
}

// LanguageProvider is the interface through which identedit parses source
// bytes and enumerates nodes by kind. Each language (or the line-mode
// fallback) is an opaque implementation; the core only ever calls Parse
// and Extract.
type LanguageProvider interface {
	// Name identifies the provider for error messages
	// ("Syntax errors detected in <Name> source").
	Name() string

	// Aliases returns basenames this provider claims regardless of
	// extension (".bashrc", "Dockerfile", ...).
	Aliases() []string

	// Extensions returns file extensions (lowercase, leading dot) this
	// provider claims.
	Extensions() []string

	// Parse turns bytes into a Tree. A syntax-error tree should still be
	// returned (with HasErrors()==true) rather than an error, so callers
	// can distinguish "no parser" from "parser found syntax errors".
	Parse(content []byte) (Tree, error)

	// Extract enumerates every node in tree whose kind equals kind.
	// The provider-defined kind vocabulary is opaque to identedit;
	// selection is always by exact kind string.
	Extract(kind string, tree Tree, content []byte) ([]RawNode, error)
}

// ParseFailure builds the standard parse_failure error for a provider name.
func ParseFailure(providerName string) error {
	return apperr.New(apperr.ParseFailure, "Syntax errors detected in "+providerName+" source")
}
