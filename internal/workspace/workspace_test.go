package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	root := t.TempDir()

	ws, err := New(root)
	require.NoError(t, err)
	assert.DirExists(t, ws.Dir)
	assert.Equal(t, root, filepath.Dir(ws.Dir))
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir), Prefix))
	assert.Equal(t, filepath.Join(ws.Dir, "a", "b"), ws.Path("a", "b"))

	other, err := New(root)
	require.NoError(t, err)
	assert.NotEqual(t, ws.Dir, other.Dir)
	assert.NotEqual(t, ws.RunID, other.RunID)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.Path("xray"), []byte("x"), 0o644))

	require.NoError(t, ws.Cleanup())
	assert.NoDirExists(t, ws.Dir)
	assert.NoError(t, ws.Cleanup(), "removing twice is harmless")
}
