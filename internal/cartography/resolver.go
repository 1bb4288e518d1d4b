// Package cartography resolves the federation's filesystem layout: the
// infrastructure root, the canonical subpaths beneath it (governance,
// artifacts), and the workspaces it contains. It is the sole place that knows how
// to find these directories; every other package asks it instead of
// constructing paths itself.
package cartography

import (
	"os"
	"path/filepath"
	"strings"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Resolver locates the federation's filesystem layout. A real deployment
// may back this with a live cartography service; FallbackResolver is the
// degraded-but-functional implementation this instrument ships with.
type Resolver interface {
	InfrastructureRoot() (string, error)
	GovernancePath(subpath ...string) (string, error)
	ArtifactsPath(subpath ...string) (string, error)
	AllWorkspaces() ([]string, error)
	// ShouldSkip reports whether a path is generated/derived output that
	// scanners and the registry builder should never treat as a primary
	// source (e.g. the registry's own output, local caches).
	ShouldSkip(path string) bool
}

// FallbackResolver finds the infrastructure root via OMNI_INFRASTRUCTURE_ROOT
// or by walking upward from the working directory for a recognizable marker
// directory, and derives subpaths from it. It never talks to a live
// cartography service.
type FallbackResolver struct {
	root string
}

// markerDirs are checked, in order, when no explicit root is configured.
var markerDirs = []string{"governance", "omni", ".git"}

// skipSubstrings are portable, domain-generic path fragments that always
// denote derived output rather than primary source of truth.
var skipSubstrings = []string{
	filepath.Join("governance", "registry", "surfaces"),
	filepath.Join("omni", "artifacts"),
}

// NewFallbackResolver builds a resolver rooted at configuredRoot, or — if
// empty — at the nearest ancestor of the working directory containing a
// marker directory.
func NewFallbackResolver(configuredRoot string) (*FallbackResolver, error) {
	if configuredRoot != "" {
		abs, err := filepath.Abs(configuredRoot)
		if err != nil {
			return nil, omnierrors.IOError(err, "resolving configured infrastructure root")
		}
		return &FallbackResolver{root: abs}, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, omnierrors.IOError(err, "getting working directory")
	}

	root, err := findMarkerRoot(wd)
	if err != nil {
		return nil, err
	}
	return &FallbackResolver{root: root}, nil
}

func findMarkerRoot(start string) (string, error) {
	dir := start
	for {
		for _, marker := range markerDirs {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", omnierrors.ConfigErrorf("no infrastructure root found above %s (set OMNI_INFRASTRUCTURE_ROOT)", start)
		}
		dir = parent
	}
}

func (r *FallbackResolver) InfrastructureRoot() (string, error) {
	return r.root, nil
}

func (r *FallbackResolver) GovernancePath(subpath ...string) (string, error) {
	parts := append([]string{r.root, "governance"}, subpath...)
	return filepath.Join(parts...), nil
}

func (r *FallbackResolver) ArtifactsPath(subpath ...string) (string, error) {
	parts := append([]string{r.root, "omni", "artifacts"}, subpath...)
	return filepath.Join(parts...), nil
}

// AllWorkspaces enumerates the immediate subdirectories of the
// infrastructure root that look like independent git workspaces (contain a
// .git directory or subdirectory). Non-git directories and the governance/
// omni bookkeeping trees are excluded.
func (r *FallbackResolver) AllWorkspaces() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, omnierrors.IOError(err, "reading infrastructure root")
	}

	var workspaces []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "governance" || name == "omni" || strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(r.root, name)
		if _, err := os.Stat(filepath.Join(full, ".git")); err == nil {
			workspaces = append(workspaces, full)
		}
	}
	return workspaces, nil
}

// ShouldSkip reports whether path falls under a known derived-output tree.
func (r *FallbackResolver) ShouldSkip(path string) bool {
	for _, sub := range skipSubstrings {
		if strings.Contains(path, sub) {
			return true
		}
	}
	return false
}
