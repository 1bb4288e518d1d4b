package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

func TestScanDepsFindsPresentManifests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0644))

	out, err := ScanDeps(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Len(t, out.Findings, 2)
}

func TestScanDepsNoManifests(t *testing.T) {
	out, err := ScanDeps(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
}

func TestScanDocsDetectsReadmeAndCountsMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CONTRIBUTING.md"), []byte("# c"), 0644))

	out, err := ScanDocs(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.True(t, out.Raw["has_readme"].(bool))
	assert.Equal(t, 2, out.Raw["markdown_file_count"])
	assert.Empty(t, out.Findings)
}

func TestScanDocsMissingReadmeIsFlagged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))

	out, err := ScanDocs(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.False(t, out.Raw["has_readme"].(bool))
	require.Len(t, out.Findings, 1)
	assert.Equal(t, "missing_readme", out.Findings[0].Kind)
}

func TestRegisterAddsAllThreeStaticScanners(t *testing.T) {
	reg := scanner.NewRegistry()
	Register(reg)
	for _, name := range []string{"deps", "docs", "events"} {
		_, ok := reg.Category(name)
		assert.True(t, ok, name)
	}
}
