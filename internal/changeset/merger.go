package changeset

import (
	"path/filepath"

	"github.com/oxhq/identedit/internal/handle"
)

// Merge combines two or more Changesets into one, concatenating their
// files arrays and coalescing entries with the same canonical file path
// into a single FileChange whose operations are the merged lists. The
// merged document is re-validated before being returned (spec.md 4.7).
func Merge(sets ...handle.Changeset) (handle.Changeset, error) {
	merged := handle.NewChangeset()

	order := make([]string, 0)
	byFile := make(map[string]*handle.FileChange)
	for _, cs := range sets {
		for _, fc := range cs.Files {
			canon := canonicalize(fc.File)
			existing, ok := byFile[canon]
			if !ok {
				copy := handle.FileChange{File: fc.File, Operations: append([]handle.Operation{}, fc.Operations...)}
				byFile[canon] = &copy
				order = append(order, canon)
				continue
			}
			existing.Operations = append(existing.Operations, fc.Operations...)
		}
	}

	for _, canon := range order {
		merged.Files = append(merged.Files, *byFile[canon])
	}

	if err := Validate(merged); err != nil {
		return handle.Changeset{}, err
	}
	return merged, nil
}

func canonicalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}
