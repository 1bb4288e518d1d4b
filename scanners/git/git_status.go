// Package git implements the git category: repository health — branch,
// head commit, and working-tree cleanliness — for a single target
// directory. Grounded on internal/gitutil, itself adapted from the
// teacher's subprocess-based internal/git package.
package git

import (
	"context"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/gitutil"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("git", "git_status", ScanStatus)
}

// ScanStatus reports a target repository's branch, head SHA, and any
// uncommitted changes.
func ScanStatus(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	repo := gitutil.At(target)
	out := &scanner.Output{Scanner: "git_status", Target: target}

	if !repo.IsWorkTree(ctx) {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "not_a_repo",
			Message: "target is not inside a git working tree",
			Path:    target,
		})
		return out, nil
	}

	branch, _ := repo.CurrentBranch(ctx)
	head, _ := repo.HeadSHA(ctx)
	remote, _ := repo.RemoteURL(ctx, "origin")

	out.Raw = map[string]interface{}{
		"branch": branch,
		"head":   head,
		"remote": remote,
	}

	dirty, err := repo.Status(ctx)
	if err != nil {
		return out, err
	}
	if len(dirty) > 0 {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "uncommitted_changes",
			Severity: "low",
			Message:  "working tree has uncommitted changes",
			Path:     target,
			Raw:      map[string]interface{}{"files": dirty},
		})
	}

	return out, nil
}
