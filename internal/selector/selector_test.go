package selector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/identedit/internal/langgo"
	"github.com/oxhq/identedit/internal/registry"
)

func testRegistry() *registry.Registry {
	reg := registry.New()
	_ = reg.RegisterBundled(langgo.New())
	return reg
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRead_FiltersByNameGlob(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\nfunc HelloWorld() {}\nfunc GoodbyeWorld() {}\nfunc Other() {}\n")

	hs, err := Read(testRegistry(), Request{
		Files: []string{path}, Kind: "function_declaration", NamePattern: "*World",
	})
	require.NoError(t, err)
	assert.Len(t, hs, 2)
}

func TestRead_ExcludesKind(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\ntype T struct{}\nfunc F() {}\n")

	hs, err := Read(testRegistry(), Request{
		Files: []string{path}, Kind: "function_declaration", ExcludeKinds: []string{"function_declaration"},
	})
	require.NoError(t, err)
	assert.Len(t, hs, 0)
}

func TestRead_RejectsDuplicateFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n")

	_, err := Read(testRegistry(), Request{Files: []string{path, path}, Kind: "function_declaration"})
	assert.Error(t, err)
}

func TestRead_LineModeRejectsSelectorFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "line one\nline two\n")

	_, err := Read(testRegistry(), Request{Files: []string{path}, Mode: ModeLine, Kind: "function_declaration"})
	assert.Error(t, err)
}

func TestRead_LineModeSplitsOnNewlines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "line one\nline two\n")

	hs, err := Read(testRegistry(), Request{Files: []string{path}, Mode: ModeLine, Verbose: true})
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "line one", hs[0].Text)
	assert.Equal(t, 1, hs[0].Line)
}

func TestRead_ConcurrentFilesPreserveOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 8; i++ {
		files = append(files, writeFile(t, dir, string(rune('a'+i))+".go", "package a\n\nfunc F() {}\n"))
	}

	hs, err := Read(testRegistry(), Request{Files: files, Kind: "function_declaration", Workers: 4})
	require.NoError(t, err)
	require.Len(t, hs, 8)
	for i, h := range hs {
		assert.Equal(t, files[i], h.File)
	}
}
