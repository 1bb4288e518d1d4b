package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/githubinv"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/gitutil"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/identity"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the live-reconciled project registry",
}

var registryGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one project's reconciled identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegistryGet,
}

var registrySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show reconciliation stats across every known project",
	RunE:  runRegistrySummary,
}

func init() {
	registryCmd.AddCommand(registryGetCmd)
	registryCmd.AddCommand(registrySummaryCmd)
}

// reconcile runs the identity engine over the three authorities
// (filesystem/Git reality, canonical database, legacy on-disk registry),
// the live equivalent of the persisted "project registry file" spec.md
// describes: registry get/summary convenience-wrap this instead of a
// cached file so they never report stale drift.
func reconcile(ctx context.Context) (identity.ScanResult, error) {
	resolver, err := newResolver()
	if err != nil {
		return identity.ScanResult{}, fmt.Errorf("resolving infrastructure root: %w", err)
	}

	overrides, err := identity.LoadOverrides(cfg.Identity.OverridesPath)
	if err != nil {
		logger.WithError(err).Warn("no identity overrides loaded")
		overrides = nil
	}
	legacyPath := filepath.Join(cfg.Identity.LegacyRegistryDir, "canonical_project_uuids.json")
	legacy, err := identity.LoadLegacyRegistry(legacyPath)
	if err != nil {
		logger.WithError(err).Warn("no legacy registry loaded")
		legacy = nil
	}
	engine := identity.NewEngine(overrides, legacy)

	workspaces, err := resolver.AllWorkspaces()
	if err != nil {
		return identity.ScanResult{}, fmt.Errorf("listing workspaces: %w", err)
	}

	var inventory []identity.RepoInventoryItem
	for _, ws := range workspaces {
		if resolver.ShouldSkip(ws) {
			continue
		}
		key := filepath.Base(ws)
		githubURL := ""
		repo := gitutil.At(ws)
		if repo.IsWorkTree(ctx) {
			if remote, err := repo.RemoteURL(ctx, "origin"); err == nil {
				githubURL = identity.NormalizeGitHubURL(remote)
				if projectKey := identity.ProjectKey(githubURL); projectKey != "" {
					key = projectKey
				}
			}
		}
		inventory = append(inventory, identity.RepoInventoryItem{
			Key:       key,
			LocalPath: ws,
			GitHubURL: githubURL,
			Kind:      identity.EntityProject,
		})
	}

	client := newDataAccessClient()
	defer client.Close()
	if cfg.Database.DSN != "" {
		if err := client.EnsurePool(ctx, cfg.Database.DSN); err != nil {
			logger.WithError(err).Warn("database tier unavailable for reconciliation, using cache/disk mirror only")
		}
	}
	cmpProjects, _, err := client.FetchProjects(ctx)
	if err != nil {
		logger.WithError(err).Warn("canonical project list unavailable, reconciling against filesystem/legacy authorities only")
		cmpProjects = nil
	}

	cmpByKey := make(map[string]identity.CMPRecord, len(cmpProjects))
	inDatabase := make(map[string]bool, len(cmpProjects))
	for _, p := range cmpProjects {
		rec := identity.CMPRecord{Key: p.Key}
		if p.UUID != "" {
			if u, err := parseUUID(p.UUID); err == nil {
				rec.UUID = u
				rec.HasUUID = true
			}
		}
		cmpByKey[p.Key] = rec
		inDatabase[p.Key] = true
	}

	if cfg.GitHub.Org != "" {
		fetcher := githubinv.NewFetcher(cfg.GitHub.Token, cfg.GitHub.RateLimit, cfg.GitHub.UseGHCli)
		if fetcher.Available() {
			if repos, _, err := fetcher.ListOrgRepos(ctx, cfg.GitHub.Org); err == nil {
				enrichInventoryWithGitHub(inventory, repos)
			} else {
				logger.WithError(err).Warn("GitHub inventory enrichment failed, continuing without it")
			}
		}
	}

	result, _ := engine.ReconcileProjects(inventory, cmpByKey, inDatabase)
	return result, nil
}

func enrichInventoryWithGitHub(inventory []identity.RepoInventoryItem, repos []githubinv.Repo) {
	byFullName := make(map[string]githubinv.Repo, len(repos))
	for _, r := range repos {
		byFullName[strings.ToLower(r.FullName)] = r
	}
	for i := range inventory {
		if inventory[i].GitHubURL == "" {
			continue
		}
		fullName := identity.RepoFullName(inventory[i].GitHubURL)
		if _, ok := byFullName[strings.ToLower(fullName)]; ok {
			inventory[i].Key = identity.ProjectKey(inventory[i].GitHubURL)
		}
	}
}

func runRegistryGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result, err := reconcile(ctx)
	if err != nil {
		return err
	}

	target := args[0]
	for _, p := range result.Projects {
		if p.Key == target || p.UUID.String() == target {
			printProject(p)
			return nil
		}
	}
	return omnierrors.ConfigErrorf("no project %q found across filesystem, database, or legacy registry authorities", target)
}

func runRegistrySummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result, err := reconcile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Projects reconciled: %d\n", result.Stats.Total)
	fmt.Printf("  converged:  %d\n", result.Stats.Converged)
	fmt.Printf("  keyed:      %d\n", result.Stats.Keyed)
	fmt.Printf("  discovered: %d\n", result.Stats.Discovered)
	fmt.Printf("  conflicts:  %d\n", result.Stats.Conflicts)

	if result.Stats.Conflicts > 0 {
		fmt.Println("\nConflicts frozen for adjudication:")
		projects := append([]identity.ProjectIdentity(nil), result.Projects...)
		sort.Slice(projects, func(i, j int) bool { return projects[i].Key < projects[j].Key })
		for _, p := range projects {
			if p.Status == identity.StatusConflict {
				fmt.Printf("  - %s: %v\n", p.Key, p.Authorities)
			}
		}
	}
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func printProject(p identity.ProjectIdentity) {
	fmt.Printf("key:         %s\n", p.Key)
	fmt.Printf("uuid:        %s\n", p.UUID)
	fmt.Printf("status:      %s\n", p.Status)
	fmt.Printf("cmp_status:  %s\n", p.CMP)
	fmt.Printf("classification: %s\n", p.Classification)
	if p.GitHubURL != "" {
		fmt.Printf("github_url:  %s\n", p.GitHubURL)
	}
	if p.LocalPath != "" {
		fmt.Printf("local_path:  %s\n", p.LocalPath)
	}
	if len(p.Authorities) > 0 {
		fmt.Printf("authorities: %v\n", p.Authorities)
	}
}
