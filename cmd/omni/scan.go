package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/aggregation"
)

var (
	scanAll      bool
	scanScanners string
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Run scanners against a target and write a scan artifact",
	Long: `scan dispatches the requested scanner set against target (default:
the infrastructure root) through the bounded aggregation pipeline and
persists one artifact per scanner plus a combined artifact under the
artifacts directory. The degradation guard is not consulted: a new
artifact always overwrites the prior one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "run every registered scanner")
	scanCmd.Flags().StringVar(&scanScanners, "scanners", "", "comma-separated scanner names to run")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("resolving infrastructure root: %w", err)
	}
	root, err := resolver.InfrastructureRoot()
	if err != nil {
		return fmt.Errorf("reading infrastructure root: %w", err)
	}

	target := root
	if len(args) == 1 {
		target = args[0]
	}

	client := newDataAccessClient()
	defer client.Close()
	if cfg.Database.DSN != "" {
		if err := client.EnsurePool(ctx, cfg.Database.DSN); err != nil {
			logger.WithError(err).Warn("database tier unavailable, falling back to cache-only access")
		}
	}

	reg := buildRegistry(defaultScannersDir(resolver), resolver, client)

	var scannerNames []string
	if scanAll || scanScanners == "" {
		scannerNames = reg.Names()
	} else {
		for _, name := range strings.Split(scanScanners, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				scannerNames = append(scannerNames, name)
			}
		}
	}
	if len(scannerNames) == 0 {
		return fmt.Errorf("no scanners selected (use --all or --scanners=a,b,c)")
	}

	logger.WithField("scanners", scannerNames).WithField("target", target).Info("starting scan")

	jobs := aggregation.ExpandJobs(scannerNames, []string{target}, nil)
	pipeline := aggregation.NewPipeline(reg, cfg.Aggregation.MaxWorkers, cfg.Aggregation.ScannerTimeout)

	start := time.Now()
	results, err := pipeline.Run(ctx, jobs)
	if err != nil {
		return fmt.Errorf("aggregation pipeline: %w", err)
	}
	logger.WithField("duration", time.Since(start)).WithField("jobs", len(results)).Info("scan complete")

	artifactsDir := cfg.Aggregation.ArtifactsDir
	if cfg.Sandbox {
		artifactsDir = "omni/artifacts-sandbox"
		logger.Warn("sandbox mode: artifacts redirected to scratch directory")
	}
	persister := aggregation.NewPersister(artifactsDir)

	scope := aggregation.Scope(sanitizeScope(target))
	for i := range results {
		if writeErr := persister.WriteScan(results[i].Job.Scanner, scope, &results[i]); writeErr != nil {
			logger.WithError(writeErr).WithField("scanner", results[i].Job.Scanner).Error("failed to persist scan result")
		}
	}
	if err := persister.WriteCombined(scope, results); err != nil {
		logger.WithError(err).Error("failed to persist combined artifact")
	}
	if err := persister.AppendDebugLog(results); err != nil {
		logger.WithError(err).Warn("failed to append scan debug log")
	}

	failed := 0
	for _, r := range results {
		if r.Output != nil && r.Output.Err != "" {
			failed++
			fmt.Printf("  ⚠️  %s: %s\n", r.Job.Scanner, r.Output.Err)
		}
	}
	fmt.Printf("\nScan complete: %d scanner(s) run, %d failed, artifact written under %s\n", len(results), failed, artifactsDir)

	// Per spec.md §6, exit code 0 covers partial scanner failures; only an
	// unrecoverable pipeline error (already returned above) maps to 1.
	return nil
}

func sanitizeScope(target string) string {
	s := strings.TrimPrefix(target, "/")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "root"
	}
	return s
}
