// Package phoenix implements the phoenix category: git resurrection
// intelligence, narrowed from
// original_source/omni/scanners/phoenix/temporal_gap_analyzer.py's full
// archive-vs-repo matching pipeline (which ingests .zip archives of
// extracted .git folders — no such archive input exists in this CLI's
// surface) down to the temporal-gap half of that signal: how long a
// tracked workspace has gone without a commit, the simplest form of
// "this repo may need resurrection review."
package phoenix

import (
	"context"
	"strconv"
	"time"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/gitutil"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// DormantAfter is how long a repo can go without a commit before it is
// flagged as dormant.
const DormantAfter = 180 * 24 * time.Hour

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("phoenix", "dormancy", ScanDormancy)
}

// ScanDormancy reports whether target's last commit is old enough to be
// considered dormant.
func ScanDormancy(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "dormancy", Target: target}

	repo := gitutil.At(target)
	if !repo.IsWorkTree(ctx) {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "not_a_repo",
			Severity: "low",
			Message:  "target is not a git working tree",
			Path:     target,
		})
		return out, nil
	}

	entries, err := repo.Log(ctx, 1, "")
	if err != nil {
		return out, err
	}
	if len(entries) == 0 {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "no_commits",
			Severity: "low",
			Message:  "repository has no commits",
			Path:     target,
		})
		return out, nil
	}

	unixSeconds, parseErr := strconv.ParseInt(entries[0].UnixTime, 10, 64)
	if parseErr != nil {
		return out, nil
	}
	lastCommit := time.Unix(unixSeconds, 0)
	age := time.Since(lastCommit)

	out.Raw = map[string]interface{}{
		"last_commit_sha": entries[0].SHA,
		"last_commit_at":  lastCommit.UTC().Format(time.RFC3339),
		"age_days":        int(age.Hours() / 24),
	}

	if age > DormantAfter {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "dormant_repository",
			Severity: "medium",
			Message:  "no commits in " + strconv.Itoa(int(age.Hours()/24)) + " days, candidate for resurrection review",
			Path:     target,
		})
	}
	return out, nil
}
