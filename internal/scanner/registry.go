// Package scanner implements the pluggable, manifest-driven scanner
// registry. Scanners are registered under a flat name and a category; a
// SCANNER_MANIFEST.yaml per category declares which scanners that category
// is supposed to contribute, so registration drift (a scanner removed from
// code but still declared, or added to code but never declared) is
// detectable rather than silent.
package scanner

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Output is the uniform result every scanner produces, regardless of what
// it scanned. Findings is the dominant payload; Raw is an escape hatch for
// scanner-specific detail that the common report generators don't need to
// understand.
type Output struct {
	Scanner   string                 `json:"scanner"`
	Target    string                 `json:"target"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration_ns"`
	Findings  []Finding              `json:"findings"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
	Err       string                 `json:"error,omitempty"`
}

// Finding is a single typed observation a scanner contributes to the scan
// artifact.
type Finding struct {
	Kind     string                 `json:"kind"`
	Severity string                 `json:"severity,omitempty"`
	Message  string                 `json:"message"`
	Path     string                 `json:"path,omitempty"`
	Raw      map[string]interface{} `json:"raw,omitempty"`
}

// Func is the uniform scanner signature: scan target, return an Output.
// opts carries scanner-specific parameters (e.g. --scanners flag values,
// manifest-declared defaults).
type Func func(ctx context.Context, target string, opts map[string]interface{}) (*Output, error)

// Manifest declares the scanners a category is expected to register, read
// from that category's SCANNER_MANIFEST.yaml.
type Manifest struct {
	Category string   `yaml:"category"`
	Scanners []string `yaml:"scanners"`
}

// entry pairs a registered scanner with its category for drift reporting.
type entry struct {
	category string
	fn       Func
}

// Registry is the flat plugin registry: every scanner is reachable by its
// bare name, and Dispatch doesn't care which category registered it.
type Registry struct {
	scanners  map[string]entry
	manifests []Manifest
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: make(map[string]entry)}
}

// Register adds a scanner under name in category. Registering the same
// name twice is a programming error, not a runtime condition — it panics,
// matching the teacher's convention of failing fast on init-time
// misconfiguration rather than threading an error return through package
// init.
func (r *Registry) Register(category, name string, fn Func) {
	if _, exists := r.scanners[name]; exists {
		panic(fmt.Sprintf("scanner %q already registered", name))
	}
	r.scanners[name] = entry{category: category, fn: fn}
}

// LoadManifest parses a category's SCANNER_MANIFEST.yaml and records its
// declared scanner list for later Drift comparison.
func (r *Registry) LoadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return omnierrors.IOError(err, "reading scanner manifest "+path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return omnierrors.DataError(err, "parsing scanner manifest "+path)
	}
	r.manifests = append(r.manifests, m)
	return nil
}

// Names returns every registered scanner name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category returns the category a scanner was registered under.
func (r *Registry) Category(name string) (string, bool) {
	e, ok := r.scanners[name]
	return e.category, ok
}

// Dispatch runs the named scanner against target.
func (r *Registry) Dispatch(ctx context.Context, name, target string, opts map[string]interface{}) (*Output, error) {
	e, ok := r.scanners[name]
	if !ok {
		return nil, omnierrors.ConfigErrorf("no scanner registered under name %q", name)
	}
	start := time.Now()
	out, err := e.fn(ctx, target, opts)
	if err != nil {
		return &Output{
			Scanner:   name,
			Target:    target,
			StartedAt: start,
			Duration:  time.Since(start),
			Err:       err.Error(),
		}, err
	}
	if out.Scanner == "" {
		out.Scanner = name
	}
	return out, nil
}

// Drift reports scanners declared in a manifest but never registered
// ("ghosts": documentation promising capability the binary doesn't have)
// and scanners registered but never declared in any manifest ("rogues":
// capability the binary has that nobody wrote down).
type Drift struct {
	Ghosts []string
	Rogues []string
}

// DetectDrift compares every loaded manifest's declared scanner set
// against what is actually registered.
func (r *Registry) DetectDrift() Drift {
	declared := make(map[string]bool)
	for _, m := range r.manifests {
		for _, name := range m.Scanners {
			declared[name] = true
		}
	}

	var drift Drift
	for name := range declared {
		if _, ok := r.scanners[name]; !ok {
			drift.Ghosts = append(drift.Ghosts, name)
		}
	}
	for name := range r.scanners {
		if !declared[name] {
			drift.Rogues = append(drift.Rogues, name)
		}
	}
	sort.Strings(drift.Ghosts)
	sort.Strings(drift.Rogues)
	return drift
}
