package grammarinstall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/manifest"
)

func TestInstall_RequiresExtWithoutRepo(t *testing.T) {
	home := t.TempDir()
	err := Install(home, Request{Lang: "zig"})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.InvalidRequest, e.Type)
}

func TestInstall_NoPartialStateOnBuildFailure(t *testing.T) {
	home := t.TempDir()
	err := Install(home, Request{Lang: "zig", Ext: ".zig"})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.GrammarInstallFailed, e.Type)

	_, statErr := os.Stat(manifest.Path(home))
	assert.Error(t, statErr, "manifest must not be written when the build step fails")

	entries, _ := filepath.Glob(filepath.Join(home, "grammars", "*"))
	assert.Empty(t, entries, "no grammar directory should be left behind on failure")
}
