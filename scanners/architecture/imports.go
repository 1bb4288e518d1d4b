// Package architecture implements the architecture category: coupling
// and import-graph analysis, grounded on
// original_source/omni/scanners/architecture/{imports,coupling}.py
// (the "Spaghett-O-Meter" — graphs module imports, flags cycles and
// high-degree "god modules"). The Python original builds its graph
// with networkx over Python imports only; here the graph spans every
// language treesitter already extracts (Python, JS, TS) plus Go via
// go/parser, since this is a polyglot infrastructure tree.
package architecture

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/treesitter"
)

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("architecture", "imports", ScanImports)
	reg.Register("architecture", "coupling", ScanCoupling)
}

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".venv": true,
	"venv": true, "__pycache__": true, "dist": true, "build": true,
}

// fileImports maps a source file to the module-ish paths it imports.
type fileImports map[string][]string

// collectImports walks target and extracts per-file import lists across
// Go, Python, JavaScript and TypeScript sources.
func collectImports(target string) (fileImports, error) {
	imports := make(fileImports)

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

		switch {
		case strings.HasSuffix(path, ".go"):
			paths, err := goFileImports(path)
			if err == nil && len(paths) > 0 {
				imports[path] = paths
			}
		case treesitter.DetectLanguage(path) != "":
			result, err := treesitter.ParseFile(path)
			if err != nil || result.Error != nil {
				return nil
			}
			var paths []string
			for _, ent := range result.Entities {
				if ent.Type == "import" && ent.ImportPath != "" {
					paths = append(paths, ent.ImportPath)
				}
			}
			if len(paths) > 0 {
				imports[path] = paths
			}
		}
		return nil
	})
	return imports, err
}

func goFileImports(path string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, imp := range f.Imports {
		paths = append(paths, strings.Trim(imp.Path.Value, `"`))
	}
	return paths, nil
}

// ScanImports reports, per file, what it imports.
func ScanImports(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "imports", Target: target}

	imports, err := collectImports(target)
	if err != nil {
		return out, err
	}

	raw := make(map[string]interface{}, len(imports))
	for file, paths := range imports {
		raw[file] = paths
	}
	out.Raw = raw
	out.Findings = append(out.Findings, scanner.Finding{
		Kind:    "import_graph_built",
		Message: "extracted imports from " + itoa(len(imports)) + " files",
	})
	return out, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
