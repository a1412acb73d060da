// Package langgo is identedit's bundled LanguageProvider for Go source,
// grounded on the teacher's providers/golang package (which wraps
// providers/base.Provider around smacker/go-tree-sitter's Go grammar).
package langgo

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/identedit/internal/provider"
)

// Provider is identedit's tree-sitter-backed Go LanguageProvider.
type Provider struct{}

// New returns a ready-to-register Go provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string          { return "Go" }
func (p *Provider) Aliases() []string     { return nil }
func (p *Provider) Extensions() []string  { return []string{".go"} }

// tree wraps a tree-sitter *sitter.Tree to satisfy provider.Tree.
type tree struct {
	t *sitter.Tree
}

func (t *tree) HasErrors() bool {
	return t.t.RootNode().HasError()
}

func (p *Provider) Parse(content []byte) (provider.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
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

// nodeName pulls a best-effort identifier out of common Go declaration
// shapes: function/method names, type names, and top-level var/const
// identifiers. Kinds with no nameable child return "".
func nodeName(n *sitter.Node, content []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "identifier", "field_identifier", "type_identifier":
			return c.Content(content)
		}
	}
	return ""
}
