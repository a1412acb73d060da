package applyengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/changeset"
	"github.com/oxhq/identedit/internal/handle"
	"github.com/oxhq/identedit/internal/identity"
	"github.com/oxhq/identedit/internal/langgo"
	"github.com/oxhq/identedit/internal/registry"
	"github.com/oxhq/identedit/internal/source"
)

func testRegistry() *registry.Registry {
	reg := registry.New()
	_ = reg.RegisterBundled(langgo.New())
	return reg
}

func writeGoFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.go")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestApply_CommitsReplaceAndWritesFile(t *testing.T) {
	body := "package a\n\nfunc Hello() {}\n"
	path := writeGoFile(t, body)
	reg := testRegistry()

	src, err := source.Load(path)
	require.NoError(t, err)
	target := handle.Target{
		Variant:  handle.VariantNode,
		Kind:     "function_declaration",
		Identity: identity.Identity("function_declaration", "func Hello() {}"),
	}
	op, err := changeset.BuildOperation(reg, src, target, handle.OpReplace, "func Hello() { panic(1) }", "")
	require.NoError(t, err)

	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{{File: path, Operations: []handle.Operation{op}}}

	summary, err := Apply(reg, cs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesModified)
	assert.Equal(t, 1, summary.OperationsApplied)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "panic(1)")
}

func TestApply_RejectsStalePreconditionAfterConcurrentEdit(t *testing.T) {
	body := "package a\n\nfunc Hello() {}\n"
	path := writeGoFile(t, body)
	reg := testRegistry()

	src, err := source.Load(path)
	require.NoError(t, err)
	target := handle.Target{
		Variant:  handle.VariantNode,
		Kind:     "function_declaration",
		Identity: identity.Identity("function_declaration", "func Hello() {}"),
	}
	op, err := changeset.BuildOperation(reg, src, target, handle.OpReplace, "func Hello() { panic(1) }", "")
	require.NoError(t, err)

	// Someone else changes the function's body between build and apply.
	require.NoError(t, os.WriteFile(path, []byte("package a\n\nfunc Hello() { return }\n"), 0o644))

	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{{File: path, Operations: []handle.Operation{op}}}

	_, err = Apply(reg, cs)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TargetMissing, e.Type)

	out, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(out), "return", "apply must leave the file untouched when verification fails")
}

func TestApply_NoFileWrittenWhenOneFileInMultiFileChangesetFails(t *testing.T) {
	bodyA := "package a\n\nfunc Hello() {}\n"
	pathA := writeGoFile(t, bodyA)
	pathB := filepath.Join(t.TempDir(), "missing.go")
	reg := testRegistry()

	srcA, err := source.Load(pathA)
	require.NoError(t, err)
	targetA := handle.Target{
		Variant:  handle.VariantNode,
		Kind:     "function_declaration",
		Identity: identity.Identity("function_declaration", "func Hello() {}"),
	}
	opA, err := changeset.BuildOperation(reg, srcA, targetA, handle.OpReplace, "func Hello() { panic(1) }", "")
	require.NoError(t, err)

	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{
		{File: pathA, Operations: []handle.Operation{opA}},
		{File: pathB, Operations: []handle.Operation{opA}},
	}

	_, err = Apply(reg, cs)
	require.Error(t, err)

	out, readErr := os.ReadFile(pathA)
	require.NoError(t, readErr)
	assert.Equal(t, bodyA, string(out), "first file must stay untouched when a later file fails phase 1-4")
}

func TestApply_ReportsResourceBusyWhenLockHeld(t *testing.T) {
	body := "package a\n\nfunc Hello() {}\n"
	path := writeGoFile(t, body)
	reg := testRegistry()

	lockPath := path + ".identedit.lock"
	require.NoError(t, os.WriteFile(lockPath, []byte("1\n"), 0o644))
	defer os.Remove(lockPath)

	cs := handle.NewChangeset()
	cs.Files = []handle.FileChange{{File: path, Operations: nil}}

	_, err := Apply(reg, cs)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ResourceBusy, e.Type)
}
