package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/aggregation"
	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/report"
)

var (
	reportScope     string
	reportEventLog  string
	reportStaleDays int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Derive debt and gap reports from a prior scan artifact",
	Long: `report reads the events scanner's output from a prior scan's combined
artifact, optionally cross-references a newline-delimited JSON event log
of runtime firings, and writes event_debt.yaml (declared events gone
quiet or never observed) and event_gap_analysis.yaml (latent vs.
emergent events) under the artifacts directory.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportScope, "scope", "", "scope to report on (defaults to the most recent combined artifact's scope)")
	reportCmd.Flags().StringVar(&reportEventLog, "event-log", "", "path to a newline-delimited JSON event log of observed firings")
	reportCmd.Flags().IntVar(&reportStaleDays, "stale-after-days", 0, "override the debt staleness window in days (default: 90)")
}

// loggedEvent is one line of the optional NDJSON runtime event log: an
// observed firing, independent of whatever static declarations a scan
// found.
type loggedEvent struct {
	Name    string    `json:"name"`
	Project string    `json:"project"`
	FiredAt time.Time `json:"fired_at"`
}

func runReport(cmd *cobra.Command, args []string) error {
	artifactsDir := cfg.Aggregation.ArtifactsDir

	scope := reportScope
	if scope == "" {
		found, err := latestCombinedScope(artifactsDir)
		if err != nil {
			return err
		}
		scope = found
	}

	combinedPath := filepath.Join(artifactsDir, "scan.combined."+scope+".json")
	data, err := os.ReadFile(combinedPath)
	if err != nil {
		return omnierrors.IOError(err, "reading combined artifact "+combinedPath)
	}
	var results []aggregation.RunResult
	if err := json.Unmarshal(data, &results); err != nil {
		return omnierrors.DataError(err, "parsing combined artifact "+combinedPath)
	}

	events := declaredEventsFromScan(results)

	if reportEventLog != "" {
		if err := mergeObservedEvents(events, reportEventLog); err != nil {
			return err
		}
	}

	staleAfter := report.StaleAfter
	if reportStaleDays > 0 {
		staleAfter = time.Duration(reportStaleDays) * 24 * time.Hour
	}

	debt := report.BuildDebtReport(eventList(events), time.Now(), staleAfter)
	gap := report.BuildGapReport(eventList(events))

	if err := writeYAML(filepath.Join(artifactsDir, "event_debt.yaml"), debt); err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(artifactsDir, "event_gap_analysis.yaml"), gap); err != nil {
		return err
	}

	fmt.Printf("Report for scope %q: %d declared event(s), %d debt entr(y/ies), %d latent, %d emergent\n",
		scope, len(events), debt.TotalDebt, len(gap.Latent), len(gap.Emergent))
	fmt.Printf("Wrote %s and %s\n",
		filepath.Join(artifactsDir, "event_debt.yaml"),
		filepath.Join(artifactsDir, "event_gap_analysis.yaml"))
	return nil
}

// declaredEventsFromScan pulls the "events" scanner's Raw.events payload
// out of a combined artifact, keyed by name+project so the event log
// merge below can look entries up without a linear scan per line.
func declaredEventsFromScan(results []aggregation.RunResult) map[string]*report.Event {
	events := make(map[string]*report.Event)
	for _, r := range results {
		if r.Job.Scanner != "events" || r.Output == nil || r.Output.Raw == nil {
			continue
		}
		raw, ok := r.Output.Raw["events"]
		if !ok {
			continue
		}
		list, ok := raw.([]interface{})
		if !ok {
			continue
		}
		for _, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			project, _ := m["project"].(string)
			declaredAt, _ := m["declared_at"].(string)
			if name == "" {
				continue
			}
			events[eventKey(name, project)] = &report.Event{
				Name:       name,
				Project:    project,
				DeclaredAt: declaredAt,
				Declared:   true,
			}
		}
	}
	return events
}

// mergeObservedEvents reads an NDJSON event log and marks matching
// declared events observed, adding undeclared firings as emergent
// entries, per spec.md's gap-analysis definition of emergent events.
func mergeObservedEvents(events map[string]*report.Event, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return omnierrors.IOError(err, "opening event log "+path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var le loggedEvent
		if err := json.Unmarshal(line, &le); err != nil {
			continue
		}
		key := eventKey(le.Name, le.Project)
		if existing, ok := events[key]; ok {
			existing.Observed = true
			if le.FiredAt.After(existing.LastFiredAt) {
				existing.LastFiredAt = le.FiredAt
			}
			continue
		}
		events[key] = &report.Event{
			Name:        le.Name,
			Project:     le.Project,
			Observed:    true,
			LastFiredAt: le.FiredAt,
		}
	}
	return sc.Err()
}

func eventKey(name, project string) string {
	return project + "\x00" + name
}

func eventList(events map[string]*report.Event) []report.Event {
	list := make([]report.Event, 0, len(events))
	for _, e := range events {
		list = append(list, *e)
	}
	return list
}

func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return omnierrors.DataError(err, "marshaling "+filepath.Base(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return omnierrors.IOError(err, "creating artifacts directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return omnierrors.IOError(err, "writing "+path)
	}
	return nil
}
