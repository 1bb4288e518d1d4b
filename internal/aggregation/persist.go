package aggregation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Scope names the artifact an aggregated run's results are grouped under,
// e.g. a project key or "federation" for a whole-fleet run.
type Scope string

// Persister writes scan artifacts atomically: each write lands in a temp
// file in the same directory, then renames over the final path, so a
// reader never observes a partially written artifact.
type Persister struct {
	ArtifactsDir string
}

// NewPersister builds a Persister rooted at dir.
func NewPersister(dir string) *Persister {
	return &Persister{ArtifactsDir: dir}
}

// WriteScan persists one scanner's results as
// scan.<scanner>.<scope>.json, atomically.
func (p *Persister) WriteScan(scannerName string, scope Scope, result *RunResult) error {
	if err := os.MkdirAll(p.ArtifactsDir, 0755); err != nil {
		return omnierrors.IOError(err, "creating artifacts directory")
	}

	filename := "scan." + sanitize(scannerName) + "." + sanitize(string(scope)) + ".json"
	final := filepath.Join(p.ArtifactsDir, filename)

	data, err := json.MarshalIndent(result.Output, "", "  ")
	if err != nil {
		return omnierrors.DataError(err, "marshaling scan output for "+filename)
	}

	return p.atomicWrite(final, data)
}

// WriteCombined persists every result of a run as a single artifact keyed
// by scope, the shape the report generators consume.
func (p *Persister) WriteCombined(scope Scope, results []RunResult) error {
	if err := os.MkdirAll(p.ArtifactsDir, 0755); err != nil {
		return omnierrors.IOError(err, "creating artifacts directory")
	}

	filename := "scan.combined." + sanitize(string(scope)) + ".json"
	final := filepath.Join(p.ArtifactsDir, filename)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return omnierrors.DataError(err, "marshaling combined scan output")
	}

	return p.atomicWrite(final, data)
}

func (p *Persister) atomicWrite(final string, data []byte) error {
	dir := filepath.Dir(final)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return omnierrors.IOError(err, "creating temp artifact file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return omnierrors.IOError(err, "writing temp artifact file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return omnierrors.IOError(err, "syncing temp artifact file")
	}
	if err := tmp.Close(); err != nil {
		return omnierrors.IOError(err, "closing temp artifact file")
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return omnierrors.IOError(err, "renaming temp artifact into place")
	}
	return nil
}

// AppendDebugLog appends one line per failed scanner result to
// scan_debug.log, for post-mortem without re-running the scan.
func (p *Persister) AppendDebugLog(results []RunResult) error {
	var failed []string
	for _, r := range results {
		if r.Output != nil && r.Output.Err != "" {
			failed = append(failed, time.Now().Format(time.RFC3339)+" "+r.Job.Scanner+" "+r.Job.Target+": "+r.Output.Err)
		}
	}
	if len(failed) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.ArtifactsDir, 0755); err != nil {
		return omnierrors.IOError(err, "creating artifacts directory")
	}
	path := filepath.Join(p.ArtifactsDir, "scan_debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return omnierrors.IOError(err, "opening scan_debug.log")
	}
	defer f.Close()

	for _, line := range failed {
		if _, err := f.WriteString(line + "\n"); err != nil {
			return omnierrors.IOError(err, "writing scan_debug.log")
		}
	}
	return nil
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, string(os.PathSeparator), "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "unknown"
	}
	return s
}
