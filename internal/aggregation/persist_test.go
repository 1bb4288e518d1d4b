package aggregation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

func TestWriteScanCreatesSanitizedFilename(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir)

	result := &RunResult{
		Job:    Job{Scanner: "git_status", Target: "owner/repo"},
		Output: &scanner.Output{Scanner: "git_status", Target: "owner/repo"},
	}
	require.NoError(t, p.WriteScan("git_status", Scope("owner/repo"), result))

	path := filepath.Join(dir, "scan.git_status.owner_repo.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out scanner.Output
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "git_status", out.Scanner)
}

func TestWriteCombinedWritesAllResults(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir)

	results := []RunResult{
		{Job: Job{Scanner: "a", Target: "t"}, Output: &scanner.Output{Scanner: "a"}},
		{Job: Job{Scanner: "b", Target: "t"}, Output: &scanner.Output{Scanner: "b"}},
	}
	require.NoError(t, p.WriteCombined("federation", results))

	path := filepath.Join(dir, "scan.combined.federation.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []RunResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}

func TestWriteScanLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir)
	result := &RunResult{Job: Job{Scanner: "a", Target: "t"}, Output: &scanner.Output{}}
	require.NoError(t, p.WriteScan("a", "t", result))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestAppendDebugLogOnlyWritesFailures(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir)

	results := []RunResult{
		{Job: Job{Scanner: "a", Target: "t"}, Output: &scanner.Output{}},
		{Job: Job{Scanner: "b", Target: "t"}, Output: &scanner.Output{Err: "boom"}},
	}
	require.NoError(t, p.AppendDebugLog(results))

	data, err := os.ReadFile(filepath.Join(dir, "scan_debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "b t")
}

func TestAppendDebugLogNoopWhenNothingFailed(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir)

	results := []RunResult{{Job: Job{Scanner: "a", Target: "t"}, Output: &scanner.Output{}}}
	require.NoError(t, p.AppendDebugLog(results))

	_, err := os.Stat(filepath.Join(dir, "scan_debug.log"))
	assert.True(t, os.IsNotExist(err), "no log file should be created when nothing failed")
}

func TestSanitizeReplacesSeparatorsAndHandlesEmpty(t *testing.T) {
	assert.Equal(t, "owner_repo", sanitize("owner/repo"))
	assert.Equal(t, "a_b", sanitize("a b"))
	assert.Equal(t, "unknown", sanitize(""))
}
