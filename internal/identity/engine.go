package identity

import (
	"github.com/google/uuid"
)

// CMPRecord is the minimal view of a canonical-database row the engine
// needs. Callers translate their data-access-layer types into this shape;
// the engine itself has no dependency on the database or API — it is pure
// reconciliation logic over already-fetched data.
type CMPRecord struct {
	Key     string
	UUID    uuid.UUID
	HasUUID bool
}

// Engine reconciles project/agent identity across the override, database,
// and legacy-registry authorities.
type Engine struct {
	// Overrides maps a normalized key to a UUID an operator has pinned by
	// hand. Overrides win over every other authority; they are the escape
	// hatch for when the deterministic derivation can't be trusted (a
	// historical rename, an imported legacy ID).
	Overrides map[string]uuid.UUID
	// Legacy maps a normalized key to a UUID recorded in the pre-database
	// on-disk registry, consulted only when neither an override nor a
	// database record exists.
	Legacy map[string]uuid.UUID
}

// NewEngine builds an Engine. Nil maps are treated as empty.
func NewEngine(overrides, legacy map[string]uuid.UUID) *Engine {
	if overrides == nil {
		overrides = map[string]uuid.UUID{}
	}
	if legacy == nil {
		legacy = map[string]uuid.UUID{}
	}
	return &Engine{Overrides: overrides, Legacy: legacy}
}

// Resolve reconciles a single key's identity. cmp is the database's view,
// if any (cmp.HasUUID false means the key is either absent from the
// database or present without a UUID). inDatabase must be true whenever
// the key has ANY row in the canonical database, even without a UUID —
// it distinguishes StatusDiscovered (no database row at all) from a
// needed backfill.
func (e *Engine) Resolve(entity EntityKind, key string, inDatabase bool, cmp CMPRecord) (Status, uuid.UUID, map[string]uuid.UUID) {
	minted := MintUUID(key)

	authorities := make(map[string]uuid.UUID)
	if id, ok := e.Overrides[key]; ok {
		authorities["override"] = id
	}
	if cmp.HasUUID {
		authorities["database"] = cmp.UUID
	}
	if id, ok := e.Legacy[key]; ok {
		authorities["legacy"] = id
	}

	// Overrides win over every other source (Registry Override): an
	// operator-pinned UUID is authoritative on its own, it never enters
	// the disagreement check below even when the database or legacy
	// registry disagrees with it.
	if overrideID, ok := e.Overrides[key]; ok {
		return StatusConverged, overrideID, authorities
	}

	if len(authorities) == 0 {
		if inDatabase {
			// Database knows the key but has no UUID recorded: a fresh
			// identifier needs to be backfilled, not treated as brand new.
			return StatusKeyed, minted, nil
		}
		return StatusDiscovered, minted, nil
	}

	if !allAgree(authorities) {
		return StatusConflict, uuid.Nil, authorities
	}

	// All present authorities agree. Policy C never overrides that
	// agreement with the derived value, even if it differs — the
	// authorities' consensus wins over fresh derivation.
	for _, id := range authorities {
		return StatusConverged, id, authorities
	}
	return StatusKeyed, minted, nil
}

func allAgree(authorities map[string]uuid.UUID) bool {
	var first uuid.UUID
	set := false
	for _, id := range authorities {
		if !set {
			first = id
			set = true
			continue
		}
		if id != first {
			return false
		}
	}
	return true
}

// ReconcileProjects runs Resolve over every inventory item and every
// known-in-database project key, producing a full ScanResult and the
// corresponding patch plan in one pass.
func (e *Engine) ReconcileProjects(inventory []RepoInventoryItem, cmp map[string]CMPRecord, inDatabase map[string]bool) (ScanResult, []Patch) {
	seen := make(map[string]bool)
	var identities []ProjectIdentity
	var patches []Patch
	stats := ScanStats{}

	resolveKey := func(key, githubURL, localPath string) {
		if seen[key] {
			return
		}
		seen[key] = true

		rec := cmp[key]
		status, id, authorities := e.Resolve(EntityProject, key, inDatabase[key], rec)
		cmpStatus := classifyCMPStatus(inDatabase[key], rec.HasUUID)

		pid := ProjectIdentity{
			Key:            key,
			UUID:           id,
			Status:         status,
			GitHubURL:      githubURL,
			LocalPath:      localPath,
			Authorities:    authorities,
			CMP:            cmpStatus,
			Classification: classifyProject(inDatabase[key], githubURL, localPath),
		}
		identities = append(identities, pid)
		patches = append(patches, PlanPatch(EntityProject, key, status, cmpStatus, id, authorities))

		switch status {
		case StatusConverged:
			stats.Converged++
		case StatusKeyed:
			stats.Keyed++
		case StatusDiscovered:
			stats.Discovered++
		case StatusConflict:
			stats.Conflicts++
		}
		stats.Total++
	}

	for _, item := range inventory {
		resolveKey(item.Key, item.GitHubURL, item.LocalPath)
	}
	for key := range cmp {
		resolveKey(key, cmp[key].Key, "")
	}

	return ScanResult{Kind: EntityProject, Projects: identities, Stats: stats}, patches
}

// classifyCMPStatus derives cmp_status purely from the database-map
// lookup, per spec step 6 — it never looks at GitHub or filesystem
// reality.
func classifyCMPStatus(inDB, hasUUID bool) CMPStatus {
	switch {
	case !inDB:
		return CMPMissing
	case hasUUID:
		return CMPFoundWithUUID
	default:
		return CMPFoundNoUUID
	}
}

// classifyProject derives the registry-output classification from
// database presence together with GitHub/filesystem reality.
func classifyProject(inDB bool, githubURL, localPath string) Classification {
	switch {
	case inDB && githubURL != "" && localPath != "":
		return ClassificationActive
	case inDB && githubURL != "" && localPath == "":
		return ClassificationSnapshot
	case inDB && githubURL == "":
		return ClassificationVirtual
	default:
		return ClassificationArchived
	}
}
