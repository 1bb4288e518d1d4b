// Package identity implements the identity reconciliation engine: it
// mints deterministic identifiers for every project and agent the
// federation knows about, consults the available authorities (manual
// overrides, the canonical database, the legacy on-disk registry) to
// decide whether an identifier already exists, and never silently
// resolves a disagreement between authorities — conflicts are frozen for
// a human to adjudicate.
package identity

import (
	"github.com/google/uuid"
)

// NamespaceFederation is the fixed UUIDv5 namespace every project and
// agent identifier is derived under. Changing this value would change
// every identifier in the federation, so it is a constant, not config.
var NamespaceFederation = uuid.MustParse("6f8e2b3a-6c1e-4f7a-9d2b-2e6f8c1a4b5d")

// EntityKind distinguishes the two reconciled entity classes.
type EntityKind string

const (
	EntityProject EntityKind = "project"
	EntityAgent   EntityKind = "agent"
)

// RepoInventoryItem is one entry from the filesystem/Git reality scan: a
// directory that looks like a project, before reconciliation.
type RepoInventoryItem struct {
	Key       string // derived project key, e.g. from directory name or GitHub URL
	LocalPath string
	GitHubURL string
	Kind      EntityKind
}

// Status classifies how a project/agent identity resolved across
// authorities.
type Status string

const (
	// StatusConverged: an override pins the UUID (it wins on its own, even
	// over a disagreeing database or legacy record), or else the database
	// and legacy registry (those present) agree on the same UUID.
	StatusConverged Status = "converged"
	// StatusKeyed: no prior UUID exists anywhere; one was freshly minted
	// from the normalized key.
	StatusKeyed Status = "keyed"
	// StatusDiscovered: found on disk/Git but absent from the canonical
	// database entirely — a candidate for CMP_CREATE.
	StatusDiscovered Status = "discovered"
	// StatusConflict: two authorities disagree on the UUID for the same
	// key. Never auto-resolved (Policy C: Freeze & Adjudicate).
	StatusConflict Status = "conflict"
)

// CMPStatus classifies a project's relationship to the canonical database,
// purely from the database-map lookup, independent of identity Status and
// independent of GitHub/filesystem reality.
type CMPStatus string

const (
	CMPFoundWithUUID CMPStatus = "found_with_uuid" // a database row exists and carries a UUID
	CMPFoundNoUUID   CMPStatus = "found_no_uuid"   // a database row exists without a UUID
	CMPMissing       CMPStatus = "missing"         // no database row at all
)

// Classification describes a project's catalogued state for the registry
// output, derived from database presence together with GitHub/filesystem
// reality. It is orthogonal to CMPStatus (database-only) and to Status
// (cross-authority agreement).
type Classification string

const (
	ClassificationActive   Classification = "active"   // in CMP, has a GitHub remote and a local clone
	ClassificationSnapshot Classification = "snapshot" // in CMP and GitHub, no local clone
	ClassificationVirtual  Classification = "virtual"  // in CMP, no GitHub remote and no local clone
	ClassificationArchived Classification = "archived" // not in CMP at all
)

// ProjectIdentity is the reconciled record for a single project: the
// identity status from authority consultation, plus the classification
// used by the registry and by drift/gap reports.
type ProjectIdentity struct {
	Key            string         `json:"key"`
	UUID           uuid.UUID      `json:"uuid"`
	Status         Status         `json:"status"`
	CMP            CMPStatus      `json:"cmp_status"`
	Classification Classification `json:"classification"`
	GitHubURL      string         `json:"github_url,omitempty"`
	LocalPath      string         `json:"local_path,omitempty"`

	// Authorities records each consulted authority's view, present
	// whenever at least one authority had a record for the key (used to
	// render conflicts).
	Authorities map[string]uuid.UUID `json:"authorities,omitempty"`
}

// AgentIdentity mirrors ProjectIdentity for the agent entity class.
type AgentIdentity struct {
	Key         string               `json:"key"`
	UUID        uuid.UUID            `json:"uuid"`
	Status      Status               `json:"status"`
	Authorities map[string]uuid.UUID `json:"authorities,omitempty"`
}

// ScanStats summarizes a reconciliation pass, the headline numbers a
// report or CLI summary prints.
type ScanStats struct {
	Total      int `json:"total"`
	Converged  int `json:"converged"`
	Keyed      int `json:"keyed"`
	Discovered int `json:"discovered"`
	Conflicts  int `json:"conflicts"`
}

// ScanResult is the full output of a reconciliation pass over one entity
// kind.
type ScanResult struct {
	Kind     EntityKind        `json:"kind"`
	Projects []ProjectIdentity `json:"projects,omitempty"`
	Agents   []AgentIdentity   `json:"agents,omitempty"`
	Stats    ScanStats         `json:"stats"`
}
