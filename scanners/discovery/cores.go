// Package discovery implements the discovery category: finding the
// independent project roots ("cores") beneath a target directory, the
// same enumeration registry_builder.py's local filesystem scan performs,
// generalized away from any one federation's directory layout.
package discovery

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// markerFiles identify a directory as a project root.
var markerFiles = []string{"go.mod", "package.json", "Cargo.toml", "pyproject.toml", "setup.py"}

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("discovery", "cores", ScanCores)
}

// ScanCores walks one level of target's subdirectories and reports every
// one that looks like an independent project root.
func ScanCores(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "cores", Target: target}

	entries, err := os.ReadDir(target)
	if err != nil {
		return out, err
	}

	var cores []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		dir := filepath.Join(target, entry.Name())
		if hasMarker(dir) {
			cores = append(cores, dir)
		}
	}

	for _, c := range cores {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "core_detected",
			Message: "independent project root discovered",
			Path:    c,
		})
	}
	out.Raw = map[string]interface{}{"count": len(cores)}
	return out, nil
}

func hasMarker(dir string) bool {
	for _, m := range markerFiles {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}
