// Package langjavascript is identedit's bundled LanguageProvider for
// JavaScript source, grounded on the teacher's providers/javascript
// package (smacker/go-tree-sitter's JavaScript grammar wrapped in
// providers/base.Provider).
package langjavascript

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/identedit/internal/provider"
)

// Provider is identedit's tree-sitter-backed JavaScript LanguageProvider.
type Provider struct{}

// New returns a ready-to-register JavaScript provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string         { return "JavaScript" }
func (p *Provider) Aliases() []string    { return nil }
func (p *Provider) Extensions() []string { return []string{".js", ".jsx", ".mjs"} }

type tree struct{ t *sitter.Tree }

func (t *tree) HasErrors() bool { return t.t.RootNode().HasError() }

func (p *Provider) Parse(content []byte) (provider.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	t, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, provider.ParseFailure(p.Name())
	}
	return &tree{t: t}, nil
}

func (p *Provider) Extract(kind string, t provider.Tree, content []byte) ([]provider.RawNode, error) {
	wt, ok := t.(*tree)
	if !ok {
		return nil, nil
	}
	if wt.HasErrors() {
		return nil, provider.ParseFailure(p.Name())
	}

	var out []provider.RawNode
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == kind {
			out = append(out, provider.RawNode{
				Kind:  kind,
				Name:  nodeName(n, content),
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(wt.t.RootNode())
	return out, nil
}

func nodeName(n *sitter.Node, content []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "identifier", "property_identifier":
			return c.Content(content)
		}
	}
	return ""
}
