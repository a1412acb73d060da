package changeset

import (
	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/identity"
	"github.com/oxhq/identedit/internal/registry"
	"github.com/oxhq/identedit/internal/source"
)

// BuildOperation resolves target against src's current content and
// produces one Operation with its Preview attached. It is pure: no file
// is written. Validate should be run afterward (edit validates single
// operations; apply re-validates the whole assembled document).
func BuildOperation(reg *registry.Registry, src *source.File, target handle.Target, op handle.OpKind, newText, moveTo string) (handle.Operation, error) {
	switch target.Variant {
	case handle.VariantNode:
		return buildNodeOp(reg, src, target, op, newText)
	case handle.VariantFileStart:
		return buildFileEdgeOp(src, target, op, newText, true)
	case handle.VariantFileEnd:
		return buildFileEdgeOp(src, target, op, newText, false)
	case handle.VariantFile:
		return buildFileOp(src, target, op, moveTo)
	default:
		return handle.Operation{}, apperr.New(apperr.InvalidRequest, "unknown variant")
	}
}

func buildNodeOp(reg *registry.Registry, src *source.File, target handle.Target, op handle.OpKind, newText string) (handle.Operation, error) {
	cand, err := ResolveNode(reg, src.Path, src.Content, target)
	if err != nil {
		return handle.Operation{}, err
	}
	if cand.Text != "" && identity.ExpectedOldHash(cand.Text) != target.ExpectedOldHash && target.ExpectedOldHash != "" {
		return handle.Operation{}, apperr.New(apperr.PreconditionFailed, "node text does not match expected_old_hash")
	}
	if target.ExpectedOldHash == "" {
		target.ExpectedOldHash = identity.ExpectedOldHash(cand.Text)
	}

	var matched handle.Span
	switch op {
	case handle.OpReplace, handle.OpDelete:
		matched = cand.Span
	case handle.OpInsertBefor:
		matched = handle.Span{Start: cand.Span.Start, End: cand.Span.Start}
	case handle.OpInsertAfter:
		matched = handle.Span{Start: cand.Span.End, End: cand.Span.End}
	default:
		return handle.Operation{}, apperr.New(apperr.InvalidRequest, "unknown variant")
	}

	return handle.Operation{
		Kind:    op,
		Target:  target,
		NewText: newText,
		Preview: handle.Preview{
			OldHash:     identity.ExpectedOldHash(cand.Text),
			OldLen:      len(cand.Text),
			NewText:     newText,
			MatchedSpan: matched,
		},
	}, nil
}

func buildFileEdgeOp(src *source.File, target handle.Target, op handle.OpKind, newText string, atStart bool) (handle.Operation, error) {
	if op != handle.OpInsert {
		return handle.Operation{}, apperr.New(apperr.InvalidRequest, "unknown variant")
	}
	var at int
	if atStart {
		at = src.BodyOffset()
	} else {
		at = len(src.Content)
	}
	return handle.Operation{
		Kind:    op,
		Target:  target,
		NewText: newText,
		Preview: handle.Preview{
			NewText:     newText,
			MatchedSpan: handle.Span{Start: at, End: at},
		},
	}, nil
}

func buildFileOp(src *source.File, target handle.Target, op handle.OpKind, moveTo string) (handle.Operation, error) {
	if op != handle.OpMove && op != handle.OpDelete {
		return handle.Operation{}, apperr.New(apperr.InvalidRequest, "unknown variant")
	}
	return handle.Operation{
		Kind:   op,
		Target: target,
		MoveTo: moveTo,
		Preview: handle.Preview{
			OldLen:      len(src.Content),
			MatchedSpan: handle.Span{Start: 0, End: len(src.Content)},
		},
	}, nil
}
