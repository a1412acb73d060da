package changeset

import (
	"path/filepath"
	"sort"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/handle"
)

// opEntry is one operation flattened out of its FileChange, carrying
// enough context to sort and conflict-scan deterministically.
type opEntry struct {
	file string
	op   handle.Operation
}

// Validate runs the whole-changeset conflict scan of spec.md 4.6. It is
// deterministic: operations are sorted by (file, matched_span.start,
// matched_span.end, op_kind) before scanning, so the returned error does
// not depend on submission order.
func Validate(cs handle.Changeset) error {
	if err := checkDuplicateFiles(cs.Files); err != nil {
		return err
	}
	if err := checkMoveExclusivity(cs.Files); err != nil {
		return err
	}

	var entries []opEntry
	for _, fc := range cs.Files {
		for _, op := range fc.Operations {
			if err := checkKnownVariant(op); err != nil {
				return err
			}
			if op.Target.Variant == handle.VariantNode && op.Target.SpanHint != nil &&
				op.Target.SpanHint.Start >= op.Target.SpanHint.End {
				return apperr.New(apperr.InvalidRequest, "zero-length spans are not supported")
			}
			entries = append(entries, opEntry{file: fc.File, op: op})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.file != b.file {
			return a.file < b.file
		}
		if a.op.Preview.MatchedSpan.Start != b.op.Preview.MatchedSpan.Start {
			return a.op.Preview.MatchedSpan.Start < b.op.Preview.MatchedSpan.Start
		}
		if a.op.Preview.MatchedSpan.End != b.op.Preview.MatchedSpan.End {
			return a.op.Preview.MatchedSpan.End < b.op.Preview.MatchedSpan.End
		}
		return a.op.Kind < b.op.Kind
	})

	if err := checkOverlaps(entries); err != nil {
		return err
	}
	if err := checkDuplicateReplaceIdentity(entries); err != nil {
		return err
	}
	return nil
}

func checkKnownVariant(op handle.Operation) error {
	switch op.Target.Variant {
	case handle.VariantNode, handle.VariantFileStart, handle.VariantFileEnd, handle.VariantFile:
	default:
		return apperr.New(apperr.InvalidRequest, "unknown variant")
	}
	switch op.Kind {
	case handle.OpReplace, handle.OpDelete, handle.OpInsertBefor, handle.OpInsertAfter, handle.OpInsert, handle.OpMove:
	default:
		return apperr.New(apperr.InvalidRequest, "unknown variant")
	}
	return nil
}

func checkDuplicateFiles(files []handle.FileChange) error {
	seen := make(map[string]bool, len(files))
	for _, fc := range files {
		canon := fc.File
		if abs, err := filepath.Abs(canon); err == nil {
			canon = abs
		}
		if resolved, err := filepath.EvalSymlinks(canon); err == nil {
			canon = resolved
		}
		if seen[canon] {
			return apperr.New(apperr.InvalidRequest, "Duplicate file entry")
		}
		seen[canon] = true
	}
	return nil
}

func checkMoveExclusivity(files []handle.FileChange) error {
	for _, fc := range files {
		hasMove := false
		hasOther := false
		for _, op := range fc.Operations {
			if op.Kind == handle.OpMove {
				hasMove = true
			} else {
				hasOther = true
			}
		}
		if hasMove && hasOther {
			return apperr.New(apperr.InvalidRequest, "move cannot be merged")
		}
	}
	return nil
}

// checkOverlaps scans the file-and-span-sorted entries for overlapping
// matched spans. Two zero-length points at the same offset are permitted
// only when one is insert_before and the other insert_after (and neither
// is a replace/delete of the shared node); any other coincidence at a
// point, any zero-length point landing on the start or end boundary of a
// non-empty replace/delete span, or any true range overlap, is rejected.
func checkOverlaps(entries []opEntry) error {
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].file == entries[start].file {
			end++
		}
		if err := checkFileOverlaps(entries[start:end]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// checkFileOverlaps runs the overlap scan for one file's span-sorted
// entries. True range overlaps are caught by tracking the running maximum
// end seen so far; zero-length points are additionally checked against
// every other span in the file, since a point sharing a non-empty span's
// start or end boundary need not be adjacent in sort order (the span's own
// start sorts before the point, but its end may not).
func checkFileOverlaps(entries []opEntry) error {
	maxEnd := -1
	for i, cur := range entries {
		cs := cur.op.Preview.MatchedSpan
		if i > 0 && cs.Start < maxEnd {
			return apperr.New(apperr.InvalidRequest, "Overlapping operations")
		}
		if cs.Start == cs.End {
			for j, other := range entries {
				if i == j {
					continue
				}
				os := other.op.Preview.MatchedSpan
				if os.Start == os.End {
					if os.Start != cs.Start {
						continue
					}
					if !isInsertPair(cur.op.Kind, other.op.Kind) {
						return apperr.New(apperr.InvalidRequest, "Overlapping operations")
					}
					continue
				}
				if cs.Start == os.Start || cs.Start == os.End {
					return apperr.New(apperr.InvalidRequest, "Overlapping operations")
				}
			}
		}
		if cs.End > maxEnd {
			maxEnd = cs.End
		}
	}
	return nil
}

func isInsertPair(a, b handle.OpKind) bool {
	return (a == handle.OpInsertBefor && b == handle.OpInsertAfter) ||
		(a == handle.OpInsertAfter && b == handle.OpInsertBefor)
}

// checkDuplicateReplaceIdentity rejects two replace ops on the same
// identity (within the same file) unless distinct span_hints disambiguate
// them.
func checkDuplicateReplaceIdentity(entries []opEntry) error {
	type key struct {
		file     string
		identity string
	}
	seen := make(map[key][]*handle.SpanHint)
	for _, e := range entries {
		if e.op.Kind != handle.OpReplace || e.op.Target.Variant != handle.VariantNode {
			continue
		}
		k := key{file: e.file, identity: e.op.Target.Identity}
		hints := seen[k]
		hint := e.op.Target.SpanHint
		for _, h := range hints {
			if hint == nil || h == nil || (*h == *hint) {
				return apperr.New(apperr.InvalidRequest, "conflicting operations")
			}
		}
		seen[k] = append(hints, hint)
	}
	return nil
}
