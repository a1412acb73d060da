// Package langfallback provides identedit's fallback LanguageProvider for
// unrecognized extensions (spec.md 4.9). It is deliberately dumb: it never
// claims to understand syntax, so AST-mode Extract always yields zero
// candidates (select returns empty results rather than erroring, and edit
// against a stale identity consistently yields target_missing or
// ambiguous_target, never a silent wrong match). It is grounded on the
// teacher's internal/matcher.Matcher minimal byte-span abstraction and the
// regex-based wildcard helpers in internal/provider's BaseProvider.
package langfallback

import "github.com/oxhq/identedit/internal/provider"

// Provider is registered as the last resort in the routing order; it
// claims no extensions or aliases of its own and is only ever selected
// when nothing else in the registry matches.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string         { return "fallback" }
func (p *Provider) Aliases() []string    { return nil }
func (p *Provider) Extensions() []string { return nil }

type tree struct{ content []byte }

func (t *tree) HasErrors() bool { return false }

// Parse never fails: an unrecognized file is not a syntax error, it is
// simply opaque to structural selection.
func (p *Provider) Parse(content []byte) (provider.Tree, error) {
	return &tree{content: content}, nil
}

// Extract always returns zero candidates: the fallback provider has no
// notion of "kind" beyond line mode, which bypasses Extract entirely.
func (p *Provider) Extract(kind string, t provider.Tree, content []byte) ([]provider.RawNode, error) {
	return nil, nil
}
