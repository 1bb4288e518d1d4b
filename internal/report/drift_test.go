package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/identity"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

func TestBuildRegistryDriftReportClassifiesGhostsAndRogues(t *testing.T) {
	identities := []identity.ProjectIdentity{
		{Key: "owner/ghost-repo", CMP: identity.CMPFoundWithUUID, Classification: identity.ClassificationVirtual},
		{Key: "owner/local-only-repo", CMP: identity.CMPMissing, LocalPath: "/local/local-only-repo"},
		{Key: "owner/linked-repo", CMP: identity.CMPFoundWithUUID, Classification: identity.ClassificationActive, LocalPath: "/local/linked-repo", GitHubURL: "github.com/owner/linked-repo"},
		{Key: "owner/conflicted-repo", CMP: identity.CMPFoundWithUUID, Classification: identity.ClassificationActive, Status: identity.StatusConflict},
	}

	drift := BuildRegistryDriftReport(identities)

	var ghostKeys, rogueKeys []string
	for _, g := range drift.Ghosts {
		ghostKeys = append(ghostKeys, g.Key)
	}
	for _, r := range drift.Rogues {
		rogueKeys = append(rogueKeys, r.Key)
	}

	assert.Contains(t, ghostKeys, "owner/ghost-repo")
	assert.Contains(t, ghostKeys, "owner/conflicted-repo")
	assert.Contains(t, rogueKeys, "owner/local-only-repo")
	assert.NotContains(t, ghostKeys, "owner/linked-repo")
	assert.NotContains(t, rogueKeys, "owner/linked-repo")
}

func TestBuildScannerDriftReport(t *testing.T) {
	d := scanner.Drift{Ghosts: []string{"phantom_scanner"}, Rogues: []string{"undocumented_scanner"}}

	drift := BuildScannerDriftReport(d)

	assert.Equal(t, "phantom_scanner", drift.Ghosts[0].Key)
	assert.Equal(t, "undocumented_scanner", drift.Rogues[0].Key)
}

func TestMergeDriftReportsCombinesAll(t *testing.T) {
	a := DriftReport{Ghosts: []DriftEntry{{Key: "a"}}}
	b := DriftReport{Rogues: []DriftEntry{{Key: "b"}}}

	merged := MergeDriftReports(a, b)

	assert.Len(t, merged.Ghosts, 1)
	assert.Len(t, merged.Rogues, 1)
}
