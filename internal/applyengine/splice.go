package applyengine

import "github.com/oxhq/identedit/internal/handle"

// Splice applies ops to content by sorting on descending matched_span.start
// and replacing each span in turn, so earlier replacements never invalidate
// the byte offsets of ones still to come (spec.md 4.8 phase 4). All
// untouched byte ranges, including their original line endings, pass
// through unmodified.
func Splice(content []byte, ops []handle.Operation) []byte {
	sorted := make([]handle.Operation, len(ops))
	copy(sorted, ops)
	sortDescendingByStart(sorted)

	out := append([]byte(nil), content...)
	for _, op := range sorted {
		span := op.Preview.MatchedSpan
		var replacement []byte
		switch op.Kind {
		case handle.OpDelete:
			replacement = nil
		default:
			replacement = []byte(op.NewText)
		}
		out = append(out[:span.Start:span.Start], append(replacement, out[span.End:]...)...)
	}
	return out
}

func sortDescendingByStart(ops []handle.Operation) {
	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && ops[j-1].Preview.MatchedSpan.Start < ops[j].Preview.MatchedSpan.Start; j-- {
			ops[j-1], ops[j] = ops[j], ops[j-1]
		}
	}
}
