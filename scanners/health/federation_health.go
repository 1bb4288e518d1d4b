// Package health implements the health category: liveness checks against
// the federation's backend and database tiers, using the same hybrid
// client the database scanners read through, but probing instead of
// fetching.
package health

import (
	"context"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/dataaccess"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg, bound to client.
func Register(reg *scanner.Registry, client *dataaccess.Client) {
	reg.Register("health", "federation_health", func(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
		return scanFederationHealth(ctx, client, target)
	})
}

func scanFederationHealth(ctx context.Context, client *dataaccess.Client, target string) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "federation_health", Target: target}

	hc := client.Probe(ctx)
	out.Raw = map[string]interface{}{
		"backend_reachable": hc.BackendReachable,
		"sql_reachable":     hc.SQLReachable,
	}

	if !hc.BackendReachable && !hc.SQLReachable {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "tier_unreachable",
			Severity: "high",
			Message:  "neither the backend API nor the canonical database is reachable; data access will fall back to the cache mirror",
		})
	} else if !hc.BackendReachable {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "tier_unreachable",
			Severity: "low",
			Message:  "backend API unreachable, falling back to direct SQL",
		})
	}

	return out, nil
}
