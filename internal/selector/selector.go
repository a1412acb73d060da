// Package selector implements identedit's Read/Select verb: composing the
// kind/name-glob/exclude-kind filters, aggregating handles across files,
// rejecting duplicate paths, and the line-mode fallback (spec.md 4.4, 4.9).
// Grounded on the teacher's core/filewalker.go (doublestar glob usage) and
// internal/cli/runner.go's worker-pool shape for the --workers knob.
package selector

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/identity"
	"github.com/oxhq/identedit/internal/provider"
	"github.com/oxhq/identedit/internal/registry"
	"github.com/oxhq/identedit/internal/source"
)

// Mode selects AST handles or line-indexed handles.
type Mode string

const (
	ModeAST  Mode = "ast"
	ModeLine Mode = "line"
)

// Request configures one Read invocation.
type Request struct {
	Files        []string
	Kind         string // required in ModeAST
	NamePattern  string
	ExcludeKinds []string
	Mode         Mode
	Verbose      bool
	Workers      int // read-only fan-out; 0 means runtime.NumCPU()
}

// Read resolves req.Files through the registry and returns every matching
// Handle, or an apperr.Error. No partial handle list is ever returned on
// error: per spec.md 4.4, "on any per-file failure the command emits no
// handles".
func Read(reg *registry.Registry, req Request) ([]handle.Handle, error) {
	if req.Mode == "" {
		req.Mode = ModeAST
	}
	if req.Mode == ModeAST && req.Kind == "" {
		return nil, apperr.New(apperr.InvalidRequest, "--kind is required in ast mode")
	}
	if req.Mode == ModeLine && (req.Kind != "" || req.NamePattern != "" || len(req.ExcludeKinds) > 0) {
		return nil, apperr.New(apperr.InvalidRequest, "selector flags are rejected in line mode")
	}

	if err := rejectDuplicatePaths(req.Files); err != nil {
		return nil, err
	}

	workers := req.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(req.Files) {
		workers = len(req.Files)
	}
	if workers < 1 {
		workers = 1
	}

	type fileResult struct {
		idx     int
		handles []handle.Handle
		err     error
	}

	jobs := make(chan int)
	results := make(chan fileResult, len(req.Files))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				path := req.Files[idx]
				var hs []handle.Handle
				var err error
				if req.Mode == ModeLine {
					hs, err = readLines(path, req.Verbose)
				} else {
					hs, err = readAST(reg, path, req)
				}
				results <- fileResult{idx: idx, handles: hs, err: err}
			}
		}()
	}
	for i := range req.Files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	ordered := make([][]handle.Handle, len(req.Files))
	var firstErr error
	for r := range results {
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		ordered[r.idx] = r.handles
	}
	if firstErr != nil {
		return nil, firstErr
	}

	var all []handle.Handle
	for _, hs := range ordered {
		all = append(all, hs...)
	}
	return all, nil
}

func rejectDuplicatePaths(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		canon, err := filepath.Abs(f)
		if err != nil {
			canon = f
		}
		if resolved, err := filepath.EvalSymlinks(canon); err == nil {
			canon = resolved
		}
		if orig, exists := seen[canon]; exists {
			_ = orig
			return apperr.New(apperr.InvalidRequest, "Duplicate file entry")
		}
		seen[canon] = f
	}
	return nil
}

func readAST(reg *registry.Registry, path string, req Request) ([]handle.Handle, error) {
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}

	p := reg.ForFile(path)
	if p == nil {
		return nil, nil
	}

	tree, err := p.Parse(src.Content)
	if err != nil {
		return nil, err
	}
	if tree.HasErrors() {
		return nil, provider.ParseFailure(p.Name())
	}

	raws, err := p.Extract(req.Kind, tree, src.Content)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(req.ExcludeKinds))
	for _, k := range req.ExcludeKinds {
		excluded[k] = true
	}

	fileHash := identity.ExpectedFileHash(src.Content)

	var out []handle.Handle
	for _, rn := range raws {
		if excluded[rn.Kind] {
			continue
		}
		if req.NamePattern != "" {
			ok, err := doublestar.Match(req.NamePattern, rn.Name)
			if err != nil || !ok {
				continue
			}
		}
		text := string(src.Content[rn.Start:rn.End])
		h := handle.Handle{
			File:            path,
			TargetType:      handle.TargetTypeNode,
			Identity:        identity.Identity(rn.Kind, text),
			Kind:            rn.Kind,
			Name:            rn.Name,
			Span:            handle.Span{Start: rn.Start, End: rn.End},
			ExpectedOldHash: identity.ExpectedOldHash(text),
		}
		if req.Verbose {
			h.Text = text
			h.ExpectedFileHash = fileHash
		}
		out = append(out, h)
	}
	return out, nil
}

func readLines(path string, verbose bool) ([]handle.Handle, error) {
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(src.Content), "\n")
	// strings.Split on a trailing-newline file yields one trailing empty
	// element; drop it so line counts match the file's actual line count.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var out []handle.Handle
	for i, line := range lines {
		lineNo := i + 1
		h := handle.Handle{
			File:       path,
			TargetType: handle.TargetTypeLine,
			Line:       lineNo,
			Text:       line,
			Anchor:     fmt.Sprintf("%d:%s", lineNo, identity.HashText(line)),
		}
		out = append(out, h)
	}
	return out, nil
}

// SortHandles orders handles deterministically by (file, span.start,
// span.end) so callers get stable output regardless of internal
// concurrency ordering.
func SortHandles(hs []handle.Handle) {
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].File != hs[j].File {
			return hs[i].File < hs[j].File
		}
		if hs[i].Span.Start != hs[j].Span.Start {
			return hs[i].Span.Start < hs[j].Span.Start
		}
		return hs[i].Span.End < hs[j].Span.End
	})
}
