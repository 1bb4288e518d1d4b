// Package fleet implements the fleet category: a single generic
// registry generator that replaces original_source/omni/scanners/fleet/
// fleet.go's per-station generate_<name>_fleet() functions (one
// hand-written function per known station) with one scanner that
// classifies every workspace cartography knows about by the markers it
// carries, instead of hardcoding a station list.
package fleet

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/cartography"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg. resolver supplies the
// set of known workspaces; it is captured by closure since scanner.Func
// has no room for extra dependencies.
func Register(reg *scanner.Registry, resolver cartography.Resolver) {
	reg.Register("fleet", "registry", func(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
		return ScanRegistry(ctx, target, opts, resolver)
	})
}

var fleetMarkers = map[string]string{
	"go.mod":           "go",
	"package.json":     "node",
	"Cargo.toml":       "rust",
	"pyproject.toml":   "python",
	"requirements.txt": "python",
}

// member describes one workspace entry in the generated fleet registry.
type member struct {
	ID         string   `json:"id"`
	Path       string   `json:"path"`
	StackTypes []string `json:"stack_types"`
}

// ScanRegistry enumerates every workspace cartography knows about and
// classifies it by the dependency manifests it carries. Raw holds
// "members" (one entry per workspace: id, path, stack_types) and "count",
// replacing the per-station lists the original's generators
// hand-assembled individually.
func ScanRegistry(ctx context.Context, target string, opts map[string]interface{}, resolver cartography.Resolver) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "registry", Target: target}

	workspaces, err := resolver.AllWorkspaces()
	if err != nil {
		return out, err
	}

	members := make([]member, 0, len(workspaces))
	for _, ws := range workspaces {
		m := member{ID: filepath.Base(ws), Path: ws}
		for file, stack := range fleetMarkers {
			if info, statErr := os.Stat(filepath.Join(ws, file)); statErr == nil && !info.IsDir() {
				m.StackTypes = append(m.StackTypes, stack)
			}
		}
		sort.Strings(m.StackTypes)
		members = append(members, m)

		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "fleet_member",
			Message: m.ID,
			Path:    ws,
			Raw:     map[string]interface{}{"stack_types": m.StackTypes},
		})
	}

	raw := make([]interface{}, len(members))
	for i, m := range members {
		raw[i] = m
	}
	out.Raw = map[string]interface{}{"members": raw, "count": len(members)}
	return out, nil
}
