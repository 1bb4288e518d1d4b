package fleet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/cartography"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

func mkWorkspace(t *testing.T, path string, markers ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0755))
	for _, m := range markers {
		require.NoError(t, os.WriteFile(filepath.Join(path, m), []byte(""), 0644))
	}
}

func TestScanRegistryClassifiesWorkspacesByStack(t *testing.T) {
	root := t.TempDir()
	mkWorkspace(t, filepath.Join(root, "go-svc"), "go.mod")
	mkWorkspace(t, filepath.Join(root, "node-svc"), "package.json")
	mkWorkspace(t, filepath.Join(root, "poly-svc"), "go.mod", "package.json")

	resolver, err := cartography.NewFallbackResolver(root)
	require.NoError(t, err)

	out, err := ScanRegistry(context.Background(), root, nil, resolver)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Raw["count"])
	require.Len(t, out.Findings, 3)

	byID := make(map[string][]string)
	for _, m := range out.Raw["members"].([]interface{}) {
		mm := m.(member)
		byID[mm.ID] = mm.StackTypes
	}
	assert.Equal(t, []string{"go"}, byID["go-svc"])
	assert.Equal(t, []string{"node"}, byID["node-svc"])
	assert.ElementsMatch(t, []string{"go", "node"}, byID["poly-svc"])
}

func TestScanRegistryNoWorkspacesIsEmpty(t *testing.T) {
	root := t.TempDir()
	resolver, err := cartography.NewFallbackResolver(root)
	require.NoError(t, err)

	out, err := ScanRegistry(context.Background(), root, nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Raw["count"])
}

func TestRegisterBindsRegistryScanner(t *testing.T) {
	reg := scanner.NewRegistry()
	resolver, err := cartography.NewFallbackResolver(t.TempDir())
	require.NoError(t, err)

	Register(reg, resolver)
	_, ok := reg.Category("registry")
	assert.True(t, ok)
}
