// Package polyglot implements the polyglot category: per-ecosystem
// package manifest parsing (Node, Rust, Python), the node_scanner/
// rust_scanner/package_scanner trio original_source/omni/core/scanners/
// __init__.py registers separately, consolidated here under one scanner
// since they share the same "read one manifest, report its declared
// dependencies" shape.
package polyglot

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// Register adds this category's scanners to reg.
func Register(reg *scanner.Registry) {
	reg.Register("polyglot", "packages", ScanPackages)
}

type nodeManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ScanPackages reports the declared dependencies of every recognized
// package manifest under target.
func ScanPackages(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "packages", Target: target}

	if pkg, err := scanNodePackage(filepath.Join(target, "package.json")); err == nil && pkg != nil {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "node_package",
			Message: pkg.Name + "@" + pkg.Version,
			Path:    filepath.Join(target, "package.json"),
			Raw: map[string]interface{}{
				"dependencies":     pkg.Dependencies,
				"dev_dependencies": pkg.DevDependencies,
			},
		})
	}

	if name, err := scanCargoName(filepath.Join(target, "Cargo.toml")); err == nil && name != "" {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "rust_package",
			Message: name,
			Path:    filepath.Join(target, "Cargo.toml"),
		})
	}

	if deps, err := scanRequirements(filepath.Join(target, "requirements.txt")); err == nil && len(deps) > 0 {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:    "python_package",
			Message: "requirements.txt",
			Path:    filepath.Join(target, "requirements.txt"),
			Raw:     map[string]interface{}{"requirements": deps},
		})
	}

	return out, nil
}

func scanNodePackage(path string) (*nodeManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m nodeManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// scanCargoName extracts the `name = "..."` line from Cargo.toml's
// [package] section without pulling in a TOML parser for one field.
func scanCargoName(path string) (string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	inPackage := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "[package]" {
			inPackage = true
			continue
		}
		if strings.HasPrefix(line, "[") {
			inPackage = false
			continue
		}
		if inPackage && strings.HasPrefix(line, "name") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), `"`), nil
			}
		}
	}
	return "", scanner.Err()
}

func scanRequirements(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reqs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reqs = append(reqs, line)
	}
	return reqs, scanner.Err()
}
