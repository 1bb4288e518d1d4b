package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/aggregation"
	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

var (
	gateStrict bool
	gateScope  string
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate a prior scan artifact against policy and exit non-zero on violation",
	Long: `gate reads the combined scan artifact for --scope and exits non-zero
when a policy violation is found: any high-severity finding, or, under
--strict, any high- or medium-severity finding. Scanner errors recorded in
the artifact are printed but do not count as violations.`,
	RunE: runGate,
}

func init() {
	gateCmd.Flags().BoolVar(&gateStrict, "strict", false, "also fail on medium-severity findings, not just high-severity ones")
	gateCmd.Flags().StringVar(&gateScope, "scope", "", "scope to evaluate (defaults to the most recent combined artifact's scope)")
}

func runGate(cmd *cobra.Command, args []string) error {
	artifactsDir := cfg.Aggregation.ArtifactsDir

	scope := gateScope
	if scope == "" {
		found, err := latestCombinedScope(artifactsDir)
		if err != nil {
			return err
		}
		scope = found
	}

	path := filepath.Join(artifactsDir, "scan.combined."+scope+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return omnierrors.IOError(err, "reading combined artifact "+path)
	}

	var results []aggregation.RunResult
	if err := json.Unmarshal(data, &results); err != nil {
		return omnierrors.DataError(err, "parsing combined artifact "+path)
	}

	violations := 0
	for _, r := range results {
		if r.Output == nil {
			continue
		}
		if r.Output.Err != "" {
			fmt.Printf("  ⚠️  %s failed: %s\n", r.Job.Scanner, r.Output.Err)
		}
		for _, f := range r.Output.Findings {
			isViolation := f.Severity == "high" || (gateStrict && (f.Severity == "high" || f.Severity == "medium"))
			if isViolation {
				violations++
				fmt.Printf("  ✗ [%s/%s] %s\n", r.Job.Scanner, f.Severity, f.Message)
			}
		}
	}

	if violations > 0 {
		return omnierrors.PolicyErrorf("gate_failure", "%d policy violation(s) found in scope %q", violations, scope)
	}

	fmt.Printf("Gate passed: no policy violations in scope %q\n", scope)
	return nil
}

func latestCombinedScope(artifactsDir string) (string, error) {
	entries, err := os.ReadDir(artifactsDir)
	if err != nil {
		return "", omnierrors.IOError(err, "reading artifacts directory "+artifactsDir)
	}

	var latest string
	var latestMod int64
	for _, e := range entries {
		name := e.Name()
		if len(name) < len("scan.combined..json") || name[:14] != "scan.combined." {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Unix() > latestMod {
			latestMod = info.ModTime().Unix()
			latest = name
		}
	}
	if latest == "" {
		return "", omnierrors.ConfigErrorf("no combined scan artifact found under %s, run `omni scan` first", artifactsDir)
	}

	scope := latest[len("scan.combined.") : len(latest)-len(".json")]
	return scope, nil
}
