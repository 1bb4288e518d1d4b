package static

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
)

var eventSourceExt = map[string]bool{
	".go": true, ".js": true, ".ts": true, ".py": true, ".rs": true, ".java": true,
}

// eventEmitters matches the handful of call shapes the federation's
// projects use to fire a named event: emit/publish/dispatch/trigger
// followed by a quoted literal. Grounded on
// original_source/omni/scanners/static/events.py's pattern list, narrowed
// from that file's full regex-confidence-scoring surface down to the
// literal-string case, since the dynamic/crown-URL/variable-fallback
// cases it also handled require a live telemetry backend this CLI has no
// channel to ingest from.
var eventEmitters = regexp.MustCompile(`(?:emit|publish|dispatch|trigger)\s*\(\s*["']([a-zA-Z0-9_.:-]+)["']`)

// registerEvents adds the events scanner to reg. It is folded into ScanDeps and
// ScanDocs's category rather than its own package since, like them, it is
// a filesystem-only static read.
func registerEvents(reg *scanner.Registry) {
	reg.Register("static", "events", ScanEvents)
}

// ScanEvents walks target for statically declared event emissions and
// reports them both as individual findings and as a Raw "events" list
// shaped to feed internal/report's Event type directly. Every event this
// scanner produces has Observed left false: "did this actually fire" is
// unknowable from source alone. Observed firings, and undeclared
// (emergent) events, enter the gap/debt reports only through
// `omni report --event-log`.
func ScanEvents(ctx context.Context, target string, opts map[string]interface{}) (*scanner.Output, error) {
	out := &scanner.Output{Scanner: "events", Target: target}

	var events []map[string]interface{}
	err := filepath.WalkDir(target, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" || d.Name() == "vendor" || d.Name() == ".venv" {
				return filepath.SkipDir
			}
			return nil
		}
		if !eventSourceExt[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		rel, relErr := filepath.Rel(target, path)
		if relErr != nil {
			rel = path
		}
		project := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]

		lineno := 0
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lineno++
			line := sc.Text()
			m := eventEmitters.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			declaredAt := fmt.Sprintf("%s:%d", rel, lineno)
			out.Findings = append(out.Findings, scanner.Finding{
				Kind:    "event_declaration",
				Message: name + " declared at " + declaredAt,
				Path:    path,
				Raw:     map[string]interface{}{"event": name, "line": lineno},
			})
			events = append(events, map[string]interface{}{
				"name":         name,
				"project":      project,
				"declared_at":  declaredAt,
				"last_fired_at": nil,
				"declared":     true,
				"observed":     false,
			})
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	out.Raw = map[string]interface{}{"events": events, "count": len(events)}
	return out, nil
}
