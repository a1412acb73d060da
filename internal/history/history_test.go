package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_LocalSqlitePathMigratesAndRoundTrips(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	ledger, err := Open(dsn)
	require.NoError(t, err)
	defer ledger.Close()

	require.NoError(t, ledger.Record(ApplyRecord{
		FilesModified:     2,
		OperationsApplied: 3,
		Succeeded:         true,
		Files:             "a.go\nb.go",
	}))
	require.NoError(t, ledger.Record(ApplyRecord{
		FilesModified: 1,
		Succeeded:     false,
		ErrorType:     "precondition_failed",
		ErrorMessage:  "hash mismatch",
	}))

	recs, err := ledger.List(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, false, recs[0].Succeeded)
	assert.Equal(t, "precondition_failed", recs[0].ErrorType)
	assert.Equal(t, true, recs[1].Succeeded)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	ledger, err := Open(dsn)
	require.NoError(t, err)
	defer ledger.Close()

	assert.DirExists(t, filepath.Dir(dsn))
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, isRemoteURL("libsql://example.turso.io"))
	assert.True(t, isRemoteURL("https://example.com/db"))
	assert.False(t, isRemoteURL("/tmp/history.db"))
	assert.False(t, isRemoteURL("history.db"))
}
