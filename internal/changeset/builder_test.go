package changeset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func loadTestSource(t *testing.T, body string) *source.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.go")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	src, err := source.Load(path)
	require.NoError(t, err)
	return src
}

func TestBuildOperation_ReplaceNode(t *testing.T) {
	body := "package a\n\nfunc Hello() {}\n"
	src := loadTestSource(t, body)
	text := "func Hello() {}"
	target := handle.Target{
		Variant:  handle.VariantNode,
		Kind:     "function_declaration",
		Identity: identity.Identity("function_declaration", text),
	}

	op, err := BuildOperation(testRegistry(), src, target, handle.OpReplace, "func Hello() { panic(1) }", "")
	require.NoError(t, err)
	assert.Equal(t, handle.OpReplace, op.Kind)
	assert.Equal(t, len(text), op.Preview.OldLen)
}

func TestBuildOperation_TargetMissingWrongIdentity(t *testing.T) {
	body := "package a\n\nfunc Hello() {}\n"
	src := loadTestSource(t, body)
	target := handle.Target{
		Variant:  handle.VariantNode,
		Kind:     "function_declaration",
		Identity: "not-a-real-identity",
	}

	_, err := BuildOperation(testRegistry(), src, target, handle.OpReplace, "x", "")
	assert.Error(t, err)
}

func TestBuildOperation_FileStartInsert(t *testing.T) {
	body := "package a\n"
	src := loadTestSource(t, body)
	target := handle.Target{Variant: handle.VariantFileStart}

	op, err := BuildOperation(testRegistry(), src, target, handle.OpInsert, "// header\n", "")
	require.NoError(t, err)
	assert.Equal(t, handle.Span{Start: 0, End: 0}, op.Preview.MatchedSpan)
}

func TestBuildOperation_FileMove(t *testing.T) {
	body := "package a\n"
	src := loadTestSource(t, body)
	target := handle.Target{Variant: handle.VariantFile}

	op, err := BuildOperation(testRegistry(), src, target, handle.OpMove, "", "b.go")
	require.NoError(t, err)
	assert.Equal(t, "b.go", op.MoveTo)
	assert.Equal(t, len(body), op.Preview.MatchedSpan.End)
}
