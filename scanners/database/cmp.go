// Package database implements the database category: scanners that read
// the canonical projects/agents database through the hybrid data access
// layer. Grounded on internal/dataaccess (itself grounded on the teacher's
// internal/cache/manager.go and internal/database/postgres_client.go) and
// on original_source/omni/builders/canonical_uuid_builder.py, whose
// _load_cmp_projects/_load_cmp_agents this mirrors.
package database

import (
	"context"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/dataaccess"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg, bound to client.
func Register(reg *scanner.Registry, client *dataaccess.Client) {
	reg.Register("database", "cmp_projects", func(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
		return scanProjects(ctx, client, target)
	})
	reg.Register("database", "cmp_agents", func(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
		return scanAgents(ctx, client, target)
	})
}

func scanProjects(ctx context.Context, client *dataaccess.Client, target string) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "cmp_projects", Target: target}

	projects, source, err := client.FetchProjects(ctx)
	if err != nil {
		return out, err
	}

	for _, p := range projects {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "cmp_project",
			Message: p.Name,
			Path:    p.LocalPath,
			Raw: map[string]interface{}{
				"uuid":       p.UUID,
				"key":        p.Key,
				"github_url": p.GitHubURL,
				"status":     p.Status,
			},
		})
	}
	out.Raw = map[string]interface{}{"source": source.String(), "count": len(projects)}
	return out, nil
}

func scanAgents(ctx context.Context, client *dataaccess.Client, target string) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "cmp_agents", Target: target}

	agents, source, err := client.FetchAgents(ctx)
	if err != nil {
		return out, err
	}

	for _, a := range agents {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "cmp_agent",
			Message: a.Name,
			Raw: map[string]interface{}{
				"uuid": a.UUID,
				"key":  a.Key,
				"role": a.Role,
			},
		})
	}
	out.Raw = map[string]interface{}{"source": source.String(), "count": len(agents)}
	return out, nil
}
