package report

import (
	"github.com/Pantheon-LadderWorks/omni-governance/internal/identity"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// BuildRegistryDriftReport inspects reconciled project identities for
// registry/reality disagreement: a project the canonical database
// believes in that neither GitHub nor the local filesystem backs up
// (ghost), and a project found on disk that the canonical database has
// never heard of (rogue). A project whose identity authorities disagree
// (StatusConflict) is also reported under Ghosts, with its own reason.
func BuildRegistryDriftReport(identities []identity.ProjectIdentity) DriftReport {
	var report DriftReport
	for _, p := range identities {
		switch {
		case p.Classification == identity.ClassificationVirtual:
			report.Ghosts = append(report.Ghosts, DriftEntry{
				Key:    p.Key,
				Reason: "present in canonical database with no GitHub remote and no local clone",
			})
		case p.CMP == identity.CMPMissing && p.LocalPath != "":
			report.Rogues = append(report.Rogues, DriftEntry{
				Key:    p.Key,
				Reason: "found on disk but absent from the canonical database",
			})
		}
		if p.Status == identity.StatusConflict {
			report.Ghosts = append(report.Ghosts, DriftEntry{
				Key:    p.Key,
				Reason: "identity authorities disagree and were frozen for adjudication",
			})
		}
	}
	return report
}

// BuildScannerDriftReport converts a scanner registration Drift into the
// same DriftReport shape the registry drift uses, so the report writer
// doesn't need to special-case the two sources.
func BuildScannerDriftReport(d scanner.Drift) DriftReport {
	var report DriftReport
	for _, name := range d.Ghosts {
		report.Ghosts = append(report.Ghosts, DriftEntry{Key: name, Reason: "declared in a scanner manifest but never registered"})
	}
	for _, name := range d.Rogues {
		report.Rogues = append(report.Rogues, DriftEntry{Key: name, Reason: "registered but never declared in any scanner manifest"})
	}
	return report
}

// MergeDriftReports combines multiple DriftReports into one.
func MergeDriftReports(reports ...DriftReport) DriftReport {
	var merged DriftReport
	for _, r := range reports {
		merged.Ghosts = append(merged.Ghosts, r.Ghosts...)
		merged.Rogues = append(merged.Rogues, r.Rogues...)
	}
	return merged
}
