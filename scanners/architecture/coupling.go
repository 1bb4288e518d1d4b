package architecture

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

// godModuleDegree is the in+out edge count at or above which a module is
// flagged as a "god module" — the original's networkx version computes
// this from graph degree centrality; a flat threshold over directory-
// level fan-in/fan-out approximates the same signal without a graph
// library in the pack.
const godModuleDegree = 15

// graph is a directed module dependency graph keyed by directory.
type graph struct {
	edges map[string]map[string]bool
}

func newGraph() *graph {
	return &graph{edges: make(map[string]map[string]bool)}
}

func (g *graph) addEdge(from, to string) {
	if from == to {
		return
	}
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]bool)
	}
	g.edges[from][to] = true
}

func (g *graph) nodes() []string {
	seen := make(map[string]bool)
	for from, tos := range g.edges {
		seen[from] = true
		for to := range tos {
			seen[to] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (g *graph) degree(node string) int {
	out := len(g.edges[node])
	in := 0
	for _, tos := range g.edges {
		if tos[node] {
			in++
		}
	}
	return out + in
}

// findCycles returns simple cycles detected via DFS back-edges. It does
// not enumerate every elementary cycle in a dense graph, only one
// representative path per back-edge found, which is enough to flag
// that a cycle exists and where it closes.
func (g *graph) findCycles() [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var stack []string
	var cycles [][]string

	var visit func(node string)
	visit = func(node string) {
		color[node] = gray
		stack = append(stack, node)
		for to := range g.edges[node] {
			switch color[to] {
			case white:
				visit(to)
			case gray:
				// Found a back-edge; extract the cycle from the stack.
				idx := -1
				for i, n := range stack {
					if n == to {
						idx = i
						break
					}
				}
				if idx >= 0 {
					cycle := append([]string{}, stack[idx:]...)
					cycle = append(cycle, to)
					cycles = append(cycles, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, n := range g.nodes() {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

// buildModuleGraph collapses per-file imports into a directory-level
// dependency graph: an edge from a file's own directory to the
// directory owning each import it resolves locally. Imports that don't
// resolve to a directory under target (stdlib, third-party) are
// dropped — coupling is about internal tangles, not external fan-out.
func buildModuleGraph(target string, imports fileImports) *graph {
	g := newGraph()

	// Map every directory under target that we actually saw files in,
	// so we can match import paths by suffix.
	dirSet := make(map[string]bool)
	for file := range imports {
		dirSet[filepath.Dir(file)] = true
	}

	for file, paths := range imports {
		fromDir := filepath.Dir(file)
		for _, p := range paths {
			toDir := resolveImportDir(target, p, dirSet)
			if toDir != "" {
				g.addEdge(fromDir, toDir)
			}
		}
	}
	return g
}

// resolveImportDir heuristically maps an import path to a directory
// already present in the walked tree, by matching the trailing path
// segment(s). Go imports carry a full module path; Python/JS imports
// are dotted or relative. Only a best-effort local match is attempted.
func resolveImportDir(target, importPath string, dirSet map[string]bool) string {
	normalized := strings.ReplaceAll(importPath, ".", "/")
	normalized = strings.TrimPrefix(normalized, "/")
	for dir := range dirSet {
		rel, err := filepath.Rel(target, dir)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			continue
		}
		if strings.HasSuffix(normalized, rel) || strings.HasSuffix(rel, normalized) {
			return dir
		}
	}
	return ""
}

// ScanCoupling builds the directory-level import graph for target and
// reports circular dependencies and high-degree "god modules".
func ScanCoupling(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "coupling", Target: target}

	imports, err := collectImports(target)
	if err != nil {
		return out, err
	}
	g := buildModuleGraph(target, imports)

	for _, cycle := range g.findCycles() {
		out.Findings = append(out.Findings, scanner.Finding{
			Kind:     "circular_dependency",
			Severity: "high",
			Message:  "cycle: " + strings.Join(relativize(target, cycle), " -> "),
		})
	}

	nodes := g.nodes()
	for _, n := range nodes {
		d := g.degree(n)
		if d >= godModuleDegree {
			out.Findings = append(out.Findings, scanner.Finding{
				Kind:     "god_module",
				Severity: "medium",
				Message:  "high fan-in/fan-out (" + strconv.Itoa(d) + " edges)",
				Path:     n,
			})
		}
	}

	out.Raw = map[string]interface{}{
		"module_count": len(nodes),
		"edge_count":   countEdges(g),
		"cycle_count":  len(g.findCycles()),
	}
	return out, nil
}

func countEdges(g *graph) int {
	n := 0
	for _, tos := range g.edges {
		n += len(tos)
	}
	return n
}

func relativize(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if rel, err := filepath.Rel(base, p); err == nil {
			out[i] = rel
		} else {
			out[i] = p
		}
	}
	return out
}
