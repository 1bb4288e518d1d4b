package main

import (
	"os"
	"path/filepath"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/cartography"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/dataaccess"
	"github.com/Pantheon-LadderWorks/omni-governance/internal/scanner"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/architecture"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/database"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/discovery"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/fleet"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/git"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/health"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/library"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/phoenix"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/polyglot"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/search"
	"github.com/Pantheon-LadderWorks/omni-governance/scanners/static"
)

// categoryDirs lists the scanner category directories relative to the
// module root, matching the on-disk layout the registry's manifest
// loader walks per spec.md §4.3's "conventional scanners directory".
var categoryDirs = []string{
	"git", "discovery", "database", "health", "static",
	"library", "polyglot", "search", "architecture", "fleet", "phoenix",
}

// newResolver builds the C1 cartography resolver from config.
func newResolver() (*cartography.FallbackResolver, error) {
	return cartography.NewFallbackResolver(cfg.Cartography.InfrastructureRoot)
}

// newDataAccessClient builds the C2 client from config.
func newDataAccessClient() *dataaccess.Client {
	return dataaccess.NewClient(dataaccess.Config{
		BackendURL: "",
		DSN:        cfg.Database.DSN,
		CacheDir:   cfg.Cache.Directory,
		CacheTTL:   cfg.Cache.TTL,
	})
}

// buildRegistry registers every scanner category and loads each
// category's manifest for drift detection, matching spec.md §4.3's
// "walk a conventional scanners directory" discovery contract. scanDir,
// when non-empty, is the root that manifest files are loaded from
// (typically the repo's scanners/ tree); manifest loading is best-effort
// since a missing manifest is not an error per spec.md's invariants.
func buildRegistry(scanDir string, resolver cartography.Resolver, client *dataaccess.Client) *scanner.Registry {
	reg := scanner.NewRegistry()

	git.Register(reg)
	discovery.Register(reg)
	database.Register(reg, client)
	health.Register(reg, client)
	static.Register(reg)
	library.Register(reg)
	polyglot.Register(reg)
	search.Register(reg)
	architecture.Register(reg)
	fleet.Register(reg, resolver)
	phoenix.Register(reg)

	if scanDir != "" {
		for _, dir := range categoryDirs {
			manifestPath := filepath.Join(scanDir, dir, "SCANNER_MANIFEST.yaml")
			if _, err := os.Stat(manifestPath); err != nil {
				continue
			}
			if err := reg.LoadManifest(manifestPath); err != nil {
				logger.WithError(err).WithField("manifest", manifestPath).Warn("failed to load scanner manifest")
			}
		}
	}

	return reg
}

// defaultScannersDir locates this repo's scanners/ tree relative to the
// infrastructure root cartography resolves, falling back to a relative
// "scanners" path when resolution fails (e.g. running outside a federation
// checkout, such as in tests).
func defaultScannersDir(resolver cartography.Resolver) string {
	root, err := resolver.InfrastructureRoot()
	if err != nil || root == "" {
		return "scanners"
	}
	candidate := filepath.Join(root, "scanners")
	if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
		return candidate
	}
	return "scanners"
}
