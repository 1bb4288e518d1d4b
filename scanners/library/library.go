// Package library implements the library category: a lightweight index of
// a project's source files by language extension, the "grand librarian"
// inventory original_source/omni/core/scanners/__init__.py registers as
// "library".
package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("library", "library", ScanLibrary)
}

var skipDirs = map[string]bool{".git": true, "node_modules": true, "vendor": true, ".venv": true}

// ScanLibrary indexes target's source files by extension.
func ScanLibrary(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "library", Target: target}

	counts := make(map[string]int)
	err := filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(d.Name()), ".")
		if ext == "" {
			return nil
		}
		counts[ext]++
		return nil
	})
	if err != nil {
		return out, err
	}

	raw := make(map[string]interface{}, len(counts))
	for ext, n := range counts {
		raw[ext] = n
	}
	out.Raw = raw
	return out, nil
}
