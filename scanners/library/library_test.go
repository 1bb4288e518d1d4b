package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLibraryCountsByExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.py"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte(""), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "d.go"), []byte(""), 0644))

	out, err := ScanLibrary(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Raw["go"])
	assert.Equal(t, 1, out.Raw["py"])
	assert.NotContains(t, out.Raw, "")
}

func TestScanLibraryEmptyDirectory(t *testing.T) {
	out, err := ScanLibrary(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Raw)
}
