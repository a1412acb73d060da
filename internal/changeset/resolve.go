// Package changeset implements the Changeset Builder (edit), Validator,
// and Merger (spec.md 4.5-4.7). resolve.go holds the node-resolution
// algorithm shared by the Builder (resolving at edit time) and
// internal/applyengine (re-resolving at apply time).
package changeset

import (
	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/identity"
	"github.com/oxhq/identedit/internal/provider"
	"github.com/oxhq/identedit/internal/registry"
)

// Candidate is a node resolved against a kind/identity pair, carrying
// enough information to build a Preview or verify a precondition.
type Candidate struct {
	Span handle.Span
	Text string
}

// ResolveNode implements the resolution algorithm of spec.md 4.5: collect
// every node of t.Kind whose identity equals t.Identity, narrow by
// SpanHint when present, and require exactly one survivor.
func ResolveNode(reg *registry.Registry, filePath string, content []byte, t handle.Target) (Candidate, error) {
	if t.SpanHint != nil && t.SpanHint.Start >= t.SpanHint.End {
		return Candidate{}, apperr.New(apperr.InvalidRequest, "zero-length spans are not supported")
	}

	p := reg.ForFile(filePath)
	if p == nil {
		return Candidate{}, apperr.New(apperr.TargetMissing, "no provider available to resolve "+t.Identity)
	}

	tree, err := p.Parse(content)
	if err != nil {
		return Candidate{}, err
	}
	if tree.HasErrors() {
		return Candidate{}, provider.ParseFailure(p.Name())
	}

	raws, err := p.Extract(t.Kind, tree, content)
	if err != nil {
		return Candidate{}, err
	}

	var candidates []Candidate
	for _, rn := range raws {
		text := string(content[rn.Start:rn.End])
		if identity.Identity(rn.Kind, text) != t.Identity {
			continue
		}
		candidates = append(candidates, Candidate{
			Span: handle.Span{Start: rn.Start, End: rn.End},
			Text: text,
		})
	}

	if t.SpanHint != nil {
		var narrowed []Candidate
		for _, c := range candidates {
			if c.Span.Start == t.SpanHint.Start && c.Span.End == t.SpanHint.End {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	switch len(candidates) {
	case 0:
		return Candidate{}, apperr.New(apperr.TargetMissing, "identity "+t.Identity+" did not resolve to any node")
	case 1:
		return candidates[0], nil
	default:
		return Candidate{}, apperr.New(apperr.AmbiguousTarget, "identity "+t.Identity+" resolves to multiple candidates")
	}
}
