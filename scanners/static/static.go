// Package static implements the static category: filesystem-only scanners
// that need no network or database access — declared dependency
// manifests and documentation coverage. Grounded on
// original_source/omni/core/scanners/__init__.py's "deps"/"docs" entries.
package static

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("static", "deps", ScanDeps)
	reg.Register("static", "docs", ScanDocs)
	registerEvents(reg)
}

var depManifests = []string{"go.mod", "package.json", "Cargo.toml", "requirements.txt", "pyproject.toml"}

// ScanDeps reports which dependency manifest files exist under target.
func ScanDeps(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "deps", Target: target}

	for _, name := range depManifests {
		path := filepath.Join(target, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			out.Findings = append(out.Findings, scanner.Finding{
				Kind:    "dependency_manifest",
				Message: name + " present",
				Path:    path,
			})
		}
	}
	return out, nil
}

// ScanDocs reports markdown documentation coverage: presence of a
// README.md at target's root and the count of all markdown files in the
// tree, the README included.
func ScanDocs(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "docs", Target: target}

	hasReadme := false
	mdCount := 0
	err := filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Dir(path) == filepath.Clean(target) && strings.EqualFold(d.Name(), "README.md") {
			hasReadme = true
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			mdCount++
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	out.Raw = map[string]interface{}{"markdown_file_count": mdCount, "has_readme": hasReadme}
	if !hasReadme {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "missing_readme",
			Severity: "medium",
			Message:  "no README.md found at project root",
			Path:     target,
		})
	}
	return out, nil
}
