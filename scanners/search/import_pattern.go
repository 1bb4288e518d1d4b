// Package search implements the search category: plain-text pattern
// counting across the tree, generalized from
// original_source/omni/builders/registry_builder.py's
// _scan_heart_integration (which greps for "from federation_heart"
// across the infrastructure root and attributes hits to the owning
// project directory). The original shells out to ripgrep; this
// implementation does not, since `rg` is not one of the external
// collaborators spec.md §6 sanctions as a subprocess (only `git` and
// `gh` are) — a per-line bufio.Scanner walk replaces it, the same
// substitution made for the "marker import" enrichment this scanner
// generalizes. The pattern is opts-supplied rather than the original's
// hardcoded import string, so the same scanner serves any fan-in query.
package search

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

var skipDirs = map[string]bool{".git": true, "node_modules": true, "vendor": true, ".venv": true}

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("search", "import_pattern", ScanImportPattern)
}

// ScanImportPattern counts files under target containing a line
// matching a substring pattern, attributed to their immediate
// subdirectory. opts["pattern"] selects the search string; with an empty
// pattern nothing is searched and a single "skipped" finding is returned.
func ScanImportPattern(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "import_pattern", Target: target}

	pattern, _ := opts["pattern"].(string)
	if pattern == "" {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "skipped",
			Severity: "low",
			Message:  `no pattern supplied in opts["pattern"]`,
		})
		return out, nil
	}

	counts := make(map[string]int)
	total := 0

	err := filepath.WalkDir(target, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		matched := false
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if strings.Contains(sc.Text(), pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}

		total++
		rel, relErr := filepath.Rel(target, path)
		if relErr != nil {
			return nil
		}
		dir := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		counts[dir]++
		return nil
	})
	if err != nil {
		return out, err
	}

	raw := make(map[string]interface{}, len(counts))
	for dir, n := range counts {
		raw[dir] = n
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "import_match",
			Message: pattern + " referenced in " + dir,
			Path:    filepath.Join(target, dir),
			Raw:     map[string]interface{}{"count": n},
		})
	}
	out.Raw = map[string]interface{}{"total_files": total, "by_dir": raw}
	return out, nil
}
