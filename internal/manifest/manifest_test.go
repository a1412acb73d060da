package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/identedit/internal/registry"
)

func TestLoad_MissingManifestReturnsEmpty(t *testing.T) {
	home := t.TempDir()
	m := Load(home)
	assert.Empty(t, m.Entries)
}

func TestLoad_MalformedManifestReturnsEmpty(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Dir(Path(home)), 0o755))
	require.NoError(t, os.WriteFile(Path(home), []byte("not json"), 0o644))

	m := Load(home)
	assert.Empty(t, m.Entries)
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	home := t.TempDir()
	want := Manifest{Entries: []Entry{{Lang: "zig", LibPath: "/tmp/zig.so", Extensions: []string{".zig"}, Symbol: "Provider"}}}

	require.NoError(t, Save(home, want))
	got := Load(home)
	assert.Equal(t, want, got)
}

func TestApplyTo_SkipsEntriesWithMissingLibrary(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, Save(home, Manifest{Entries: []Entry{
		{Lang: "zig", LibPath: filepath.Join(home, "missing.so"), Extensions: []string{".zig"}},
	}}))

	reg := registry.New()
	assert.NotPanics(t, func() { ApplyTo(home, reg) })
	assert.Nil(t, reg.ForFile("x.zig"))
}

func TestApplyTo_SkipsEntriesWithEmptyLibPath(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, Save(home, Manifest{Entries: []Entry{{Lang: "zig", Extensions: []string{".zig"}}}}))

	reg := registry.New()
	assert.NotPanics(t, func() { ApplyTo(home, reg) })
}
