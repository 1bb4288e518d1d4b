package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/provenance"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit UUID provenance, dependency manifests, and lockfile consistency",
}

var auditUUIDsCmd = &cobra.Command{
	Use:   "uuids [target]",
	Short: "Scan target for UUID occurrences and classify their provenance",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditUUIDs,
}

var auditDepsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check that every workspace's dependency manifest has a matching lockfile",
	RunE:  runAuditDeps,
}

var auditLockCmd = &cobra.Command{
	Use:   "lock [target]",
	Short: "Check go.mod/go.sum consistency for a single Go module",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditLock,
}

func init() {
	auditCmd.AddCommand(auditUUIDsCmd)
	auditCmd.AddCommand(auditDepsCmd)
	auditCmd.AddCommand(auditLockCmd)
}

func runAuditUUIDs(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	canonical := make(map[string]string)
	result, err := reconcile(ctx)
	if err != nil {
		logger.WithError(err).Warn("reconciliation unavailable, auditing UUIDs with no canonical registry to compare against")
	} else {
		for _, p := range result.Projects {
			if p.UUID.String() != "" {
				canonical[strings.ToLower(p.UUID.String())] = p.Key
			}
		}
	}

	idx, err := provenance.BuildIndex(target, canonical, cfg.Identity.ProvenanceRules)
	if err != nil {
		return omnierrors.IOError(err, "building provenance index for "+target)
	}

	artifactsDir := cfg.Aggregation.ArtifactsDir
	if cfg.Sandbox {
		artifactsDir = "omni/artifacts-sandbox"
	}

	jsonPath := filepath.Join(artifactsDir, "uuid_provenance.json")
	if err := writeJSON(jsonPath, idx); err != nil {
		return err
	}
	reportPath := filepath.Join(artifactsDir, "UUID_AUDIT_REPORT.md")
	if err := writeProvenanceReport(reportPath, idx); err != nil {
		return err
	}

	fmt.Printf("Scanned %d file(s), found %d unique UUID(s)\n", idx.TotalFiles, len(idx.Entries))
	categories := make([]string, 0, len(idx.CategoryCounts))
	for c := range idx.CategoryCounts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("  %-14s %d\n", c, idx.CategoryCounts[c])
	}
	fmt.Printf("Wrote %s and %s\n", jsonPath, reportPath)
	return nil
}

func writeProvenanceReport(path string, idx provenance.Index) error {
	var b strings.Builder
	b.WriteString("# UUID Audit Report\n\n")
	b.WriteString(fmt.Sprintf("Scanned %d file(s); %d unique UUID(s) found.\n\n", idx.TotalFiles, len(idx.Entries)))
	b.WriteString("## By category\n\n")

	categories := make([]string, 0, len(idx.CategoryCounts))
	for c := range idx.CategoryCounts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("- **%s**: %d\n", c, idx.CategoryCounts[c]))
	}

	b.WriteString("\n## Orphans\n\n")
	b.WriteString("UUIDs that match no canonical registry entry and no configured cache/artifact rule — candidates for either registering or deleting.\n\n")
	for _, e := range idx.Entries {
		if e.Category != provenance.CategoryOrphan {
			continue
		}
		b.WriteString(fmt.Sprintf("- `%s` (%d occurrence(s))\n", e.UUID, len(e.Paths)))
		for _, p := range firstN(e.Paths, 3) {
			b.WriteString(fmt.Sprintf("  - %s\n", p))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return omnierrors.IOError(err, "creating artifacts directory")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return omnierrors.IOError(err, "writing "+path)
	}
	return nil
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
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

var depManifestLocks = map[string]string{
	"go.mod":          "go.sum",
	"package.json":    "package-lock.json",
	"Cargo.toml":      "Cargo.lock",
	"pyproject.toml":  "poetry.lock",
	"requirements.txt": "",
}

func runAuditDeps(cmd *cobra.Command, args []string) error {
	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("resolving infrastructure root: %w", err)
	}
	workspaces, err := resolver.AllWorkspaces()
	if err != nil {
		return fmt.Errorf("listing workspaces: %w", err)
	}

	missing := 0
	for _, ws := range workspaces {
		if resolver.ShouldSkip(ws) {
			continue
		}
		for manifest, lock := range depManifestLocks {
			if lock == "" {
				continue
			}
			manifestPath := filepath.Join(ws, manifest)
			if _, err := os.Stat(manifestPath); err != nil {
				continue
			}
			lockPath := filepath.Join(ws, lock)
			if _, err := os.Stat(lockPath); err != nil {
				missing++
				fmt.Printf("  ✗ %s: declares %s with no %s\n", ws, manifest, lock)
			}
		}
	}

	if missing == 0 {
		fmt.Println("All workspaces with a dependency manifest have a matching lockfile.")
		return nil
	}
	return omnierrors.PolicyErrorf("audit_deps", "%d dependency manifest(s) across workspaces have no lockfile", missing)
}

func runAuditLock(cmd *cobra.Command, args []string) error {
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

	modPath := filepath.Join(target, "go.mod")
	if _, err := os.Stat(modPath); err != nil {
		return omnierrors.ConfigErrorf("no go.mod found at %s", target)
	}
	sumPath := filepath.Join(target, "go.sum")
	if _, err := os.Stat(sumPath); err != nil {
		return omnierrors.PolicyErrorf("audit_lock", "go.mod present at %s with no go.sum — run `go mod tidy` to pin a verifiable checksum lock", target)
	}

	fmt.Printf("go.mod and go.sum both present at %s\n", target)
	return nil
}
