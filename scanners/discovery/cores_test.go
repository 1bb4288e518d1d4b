package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCoresFindsMarkerDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "go-project"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go-project", "go.mod"), []byte("module x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js-project"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js-project", "package.json"), []byte("{}"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-project"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden", "go.mod"), []byte("module x"), 0644))

	out, err := ScanCores(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Raw["count"])
	var paths []string
	for _, f := range out.Findings {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "go-project"))
	assert.Contains(t, paths, filepath.Join(root, "js-project"))
}

func TestScanCoresEmptyDirectory(t *testing.T) {
	out, err := ScanCores(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Raw["count"])
	assert.Empty(t, out.Findings)
}

func TestScanCoresMissingTargetErrors(t *testing.T) {
	_, err := ScanCores(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestHasMarkerDetectsAnyMarkerFile(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, hasMarker(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(""), 0644))
	assert.True(t, hasMarker(dir))
}
