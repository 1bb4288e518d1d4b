package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsPopulated(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.Sandbox)
	assert.Equal(t, 10, cfg.GitHub.RateLimit)
	assert.True(t, cfg.GitHub.UseGHCli)
	assert.Equal(t, 0.5, cfg.Guard.MaxDropRatio)
	assert.Equal(t, "omni/artifacts", cfg.Aggregation.ArtifactsDir)
	assert.NotEmpty(t, cfg.Identity.ProvenanceRules)
}

func TestLoadExplicitMissingPathErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err, "an explicit config path that doesn't exist is a read failure, not a silent fallback")
}

func TestLoadWithNoPathSearchesAndFallsBackToDefaults(t *testing.T) {
	empty := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(empty))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err, "no config file anywhere on the search path is ConfigFileNotFoundError, which Load treats as defaults")
	assert.Equal(t, Default().Aggregation.ArtifactsDir, cfg.Aggregation.ArtifactsDir)
}

func TestApplyEnvOverridesInfrastructureRoot(t *testing.T) {
	t.Setenv("OMNI_INFRASTRUCTURE_ROOT", "/mnt/federation")
	t.Setenv("OMNI_SANDBOX", "true")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "/mnt/federation", cfg.Cartography.InfrastructureRoot)
	assert.True(t, cfg.Sandbox)
}

func TestApplyEnvOverridesGitHubToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test_token")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "ghp_test_token", cfg.GitHub.Token)
}

func TestExpandPathExpandsTilde(t *testing.T) {
	expanded := expandPath("~/cache")
	assert.NotEqual(t, "~/cache", expanded)
	assert.Contains(t, expanded, "cache")
}

func TestExpandPathLeavesAbsolutePathAlone(t *testing.T) {
	assert.Equal(t, "/var/cache/omni", expandPath("/var/cache/omni"))
}

func TestDefaultProvenanceRulesAreGeneric(t *testing.T) {
	for _, rule := range DefaultProvenanceRules() {
		assert.NotContains(t, rule, "C:\\", "provenance rules must stay portable, not hardcode a Windows-style user path")
	}
}
