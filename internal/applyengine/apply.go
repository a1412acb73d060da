package applyengine

import (
	"os"
	"path/filepath"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/changeset"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/identity"
	"github.com/oxhq/identedit/internal/registry"
)

// plan is the per-file working state carried from phase 1-4 into phase 5.
// It mirrors the state machine of spec.md 4.8:
// IDLE -> LOCKED -> PARSED -> VERIFIED -> STAGED -> COMMITTED.
type plan struct {
	file    string
	lock    *fileLock
	staged  []byte // nil for a no-op FileChange
	isMove  bool
	moveTo  string
	isFileDelete bool
	opCount int
}

// Apply validates cs, then runs the two-phase engine: phases 1-4
// (lock, re-parse, re-resolve, verify) must succeed for every file before
// any phase-5 write runs for any file.
func Apply(reg *registry.Registry, cs handle.Changeset) (handle.Summary, error) {
	if err := changeset.Validate(cs); err != nil {
		return handle.Summary{}, err
	}

	plans := make([]*plan, 0, len(cs.Files))
	defer func() {
		for _, p := range plans {
			p.lock.release()
		}
	}()

	for _, fc := range cs.Files {
		p, err := prepareFile(reg, fc)
		if err != nil {
			return handle.Summary{}, err
		}
		plans = append(plans, p)
	}

	var summary handle.Summary
	for _, p := range plans {
		switch {
		case p.isFileDelete:
			if err := os.Remove(p.file); err != nil {
				return handle.Summary{}, apperr.Wrap(apperr.IOError, "deleting file", err)
			}
			summary.FilesModified++
			summary.OperationsApplied += p.opCount
		case p.isMove:
			if err := renameAtomic(p.file, p.moveTo); err != nil {
				return handle.Summary{}, apperr.Wrap(apperr.IOError, "moving file", err)
			}
			summary.FilesModified++
			summary.OperationsApplied += p.opCount
		case p.staged != nil:
			if err := writeAtomic(p.file, p.staged); err != nil {
				return handle.Summary{}, apperr.Wrap(apperr.IOError, "writing file", err)
			}
			summary.FilesModified++
			summary.OperationsApplied += p.opCount
		}
	}
	return summary, nil
}

// prepareFile runs phases 1-4 for one FileChange: acquire lock, re-read,
// re-parse, re-resolve every target, verify preconditions, and (for
// content operations) stage the spliced bytes.
func prepareFile(reg *registry.Registry, fc handle.FileChange) (*plan, error) {
	info, err := os.Lstat(fc.File)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, "reading file", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, apperr.New(apperr.InvalidRequest, fc.File+": symbolic link")
	}

	lock, err := acquireLock(fc.File)
	if err != nil {
		return nil, err
	}

	p := &plan{file: fc.File, lock: lock}

	// Phase 1 also requires write-open capability even for a no-op
	// FileChange (spec.md 4.8: "read-only files therefore also fail with
	// io_error for no-ops, because write-open is required").
	wf, err := os.OpenFile(fc.File, os.O_RDWR, 0)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, "opening file for write", err)
	}
	wf.Close()

	if len(fc.Operations) == 0 {
		return p, nil
	}

	content, err := os.ReadFile(fc.File)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, "reading file", err)
	}

	if isFileLevelOnly(fc.Operations) {
		op := fc.Operations[0]
		if err := verifyFileHash(content, op.Target); err != nil {
			return nil, err
		}
		switch op.Kind {
		case handle.OpMove:
			p.isMove = true
			p.moveTo = op.MoveTo
		case handle.OpDelete:
			p.isFileDelete = true
		}
		p.opCount = 1
		return p, nil
	}

	resolved := make([]handle.Operation, 0, len(fc.Operations))
	for _, op := range fc.Operations {
		switch op.Target.Variant {
		case handle.VariantNode:
			cand, err := resolveWithRecovery(reg, fc.File, content, op.Target)
			if err != nil {
				return nil, err
			}
			if identity.ExpectedOldHash(cand.Text) != op.Target.ExpectedOldHash {
				return nil, apperr.New(apperr.PreconditionFailed, "node text does not match expected_old_hash")
			}
			op.Preview.MatchedSpan = matchedSpanFor(op.Kind, cand.Span)
			op.Preview.OldLen = len(cand.Text)
			op.Preview.OldHash = identity.ExpectedOldHash(cand.Text)
		case handle.VariantFileStart, handle.VariantFileEnd:
			if err := verifyFileHash(content, op.Target); err != nil {
				return nil, err
			}
		}
		resolved = append(resolved, op)
	}

	p.staged = Splice(content, resolved)
	p.opCount = len(resolved)
	return p, nil
}

func isFileLevelOnly(ops []handle.Operation) bool {
	if len(ops) != 1 {
		return false
	}
	return ops[0].Target.Variant == handle.VariantFile
}

func verifyFileHash(content []byte, t handle.Target) error {
	if t.ExpectedFileHash == "" {
		return nil
	}
	if identity.ExpectedFileHash(content) != t.ExpectedFileHash {
		return apperr.New(apperr.PreconditionFailed, "file content does not match expected_file_hash")
	}
	return nil
}

func matchedSpanFor(op handle.OpKind, span handle.Span) handle.Span {
	switch op {
	case handle.OpInsertBefor:
		return handle.Span{Start: span.Start, End: span.Start}
	case handle.OpInsertAfter:
		return handle.Span{Start: span.End, End: span.End}
	default:
		return span
	}
}

// resolveWithRecovery re-resolves a node target, falling back to the
// uniform-delta recovery heuristic of spec.md 4.8 when the identity-based
// resolution in changeset.ResolveNode finds no candidate: if exactly one
// node of the same kind has text hashing to the target's
// expected_old_hash, it is accepted even though its identity (computed
// from possibly-shifted text) no longer matches.
func resolveWithRecovery(reg *registry.Registry, file string, content []byte, t handle.Target) (changeset.Candidate, error) {
	cand, err := changeset.ResolveNode(reg, file, content, t)
	if err == nil {
		return cand, nil
	}
	if e, ok := apperr.As(err); !ok || e.Type != apperr.TargetMissing {
		return changeset.Candidate{}, err
	}

	p := reg.ForFile(file)
	if p == nil {
		return changeset.Candidate{}, err
	}
	tree, perr := p.Parse(content)
	if perr != nil || tree.HasErrors() {
		return changeset.Candidate{}, err
	}
	raws, eerr := p.Extract(t.Kind, tree, content)
	if eerr != nil {
		return changeset.Candidate{}, err
	}
	var matches []changeset.Candidate
	for _, rn := range raws {
		text := string(content[rn.Start:rn.End])
		if identity.ExpectedOldHash(text) == t.ExpectedOldHash {
			matches = append(matches, changeset.Candidate{Span: handle.Span{Start: rn.Start, End: rn.End}, Text: text})
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return changeset.Candidate{}, err
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".identedit-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if info, statErr := os.Stat(path); statErr == nil {
		os.Chmod(tmpPath, info.Mode())
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func renameAtomic(from, to string) error {
	return os.Rename(from, to)
}
