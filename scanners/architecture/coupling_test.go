package architecture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphAddEdgeIgnoresSelfLoop(t *testing.T) {
	g := newGraph()
	g.addEdge("a", "a")
	assert.Empty(t, g.nodes())
}

func TestGraphDegreeCountsInAndOut(t *testing.T) {
	g := newGraph()
	g.addEdge("a", "b")
	g.addEdge("c", "b")
	g.addEdge("b", "d")

	assert.Equal(t, 3, g.degree("b")) // 1 out (b->d) + 2 in (a->b, c->b)
}

func TestGraphNodesAreSortedAndDeduped(t *testing.T) {
	g := newGraph()
	g.addEdge("b", "a")
	g.addEdge("a", "c")
	assert.Equal(t, []string{"a", "b", "c"}, g.nodes())
}

func TestFindCyclesDetectsSimpleCycle(t *testing.T) {
	g := newGraph()
	g.addEdge("a", "b")
	g.addEdge("b", "c")
	g.addEdge("c", "a")

	cycles := g.findCycles()
	assert.NotEmpty(t, cycles)
}

func TestFindCyclesNoneInDAG(t *testing.T) {
	g := newGraph()
	g.addEdge("a", "b")
	g.addEdge("b", "c")

	assert.Empty(t, g.findCycles())
}

func TestResolveImportDirMatchesBySuffix(t *testing.T) {
	dirSet := map[string]bool{
		"/repo/internal/report":  true,
		"/repo/internal/scanner": true,
	}
	dir := resolveImportDir("/repo", "github.com/org/repo/internal/report", dirSet)
	assert.Equal(t, "/repo/internal/report", dir)
}

func TestResolveImportDirNoMatchReturnsEmpty(t *testing.T) {
	dirSet := map[string]bool{"/repo/internal/report": true}
	dir := resolveImportDir("/repo", "fmt", dirSet)
	assert.Empty(t, dir)
}

func TestCountEdgesSumsAllAdjacency(t *testing.T) {
	g := newGraph()
	g.addEdge("a", "b")
	g.addEdge("a", "c")
	g.addEdge("b", "c")
	assert.Equal(t, 3, countEdges(g))
}
