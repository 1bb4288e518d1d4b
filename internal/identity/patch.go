package identity

import (
	"github.com/google/uuid"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// PatchKind discriminates the patch-plan tagged union. A Patch is always
// exactly one of these; callers switch exhaustively on Kind rather than
// type-asserting across an interface hierarchy.
type PatchKind string

const (
	// PatchCreate: key exists on disk/Git but not in the canonical
	// database at all. The freshly minted UUID should be inserted.
	PatchCreate PatchKind = "CMP_CREATE"
	// PatchBackfillUUID: key exists in the canonical database without a
	// UUID.
	PatchBackfillUUID PatchKind = "CMP_BACKFILL_UUID"
	// PatchNoOp: already converged, nothing to do.
	PatchNoOp PatchKind = "NO_OP"
	// PatchConflictFreeze: authorities disagree. No identifier is written
	// anywhere; the conflict is recorded for a human to adjudicate.
	PatchConflictFreeze PatchKind = "CONFLICT_FREEZE"
)

// Patch is one action in a reconciliation patch plan.
type Patch struct {
	Kind     PatchKind
	Entity   EntityKind
	Key      string
	UUID     uuid.UUID            // set for PatchCreate / PatchBackfillUUID
	Conflict map[string]uuid.UUID // set for PatchConflictFreeze: authority name -> UUID
}

// PlanPatch decides the single patch action for one reconciled identity.
// A conflict always freezes regardless of cmp_status; otherwise the
// action is driven entirely by cmp_status, per spec's patch-generation
// rules (missing -> CMP_CREATE, found_no_uuid -> CMP_BACKFILL_UUID,
// found_with_uuid -> NO_OP).
func PlanPatch(entity EntityKind, key string, status Status, cmpStatus CMPStatus, mintedUUID uuid.UUID, authorities map[string]uuid.UUID) Patch {
	if status == StatusConflict {
		return Patch{Kind: PatchConflictFreeze, Entity: entity, Key: key, Conflict: authorities}
	}
	switch cmpStatus {
	case CMPMissing:
		return Patch{Kind: PatchCreate, Entity: entity, Key: key, UUID: mintedUUID}
	case CMPFoundNoUUID:
		return Patch{Kind: PatchBackfillUUID, Entity: entity, Key: key, UUID: mintedUUID}
	default:
		return Patch{Kind: PatchNoOp, Entity: entity, Key: key, UUID: mintedUUID}
	}
}

// Applier is the capability interface the patch plan is applied through.
// Each method corresponds to exactly one PatchKind; PatchNoOp and
// PatchConflictFreeze never reach a write method — FreezeConflict only
// records the disagreement, it does not choose a winner.
type Applier interface {
	CreateProject(entity EntityKind, key string, id uuid.UUID) error
	BackfillUUID(entity EntityKind, key string, id uuid.UUID) error
	FreezeConflict(entity EntityKind, key string, authorities map[string]uuid.UUID) error
}

// Apply executes a patch plan against an Applier. Application is
// idempotent: replaying the same plan against a store already in the
// target state produces no further change, because CreateProject and
// BackfillUUID are themselves required to be idempotent upserts (the
// Applier's contract, not this function's).
func Apply(applier Applier, plan []Patch) error {
	for _, p := range plan {
		switch p.Kind {
		case PatchNoOp:
			continue
		case PatchCreate:
			if err := applier.CreateProject(p.Entity, p.Key, p.UUID); err != nil {
				return omnierrors.ExternalErrorf(err, "applying CMP_CREATE for %s", p.Key)
			}
		case PatchBackfillUUID:
			if err := applier.BackfillUUID(p.Entity, p.Key, p.UUID); err != nil {
				return omnierrors.ExternalErrorf(err, "applying CMP_BACKFILL_UUID for %s", p.Key)
			}
		case PatchConflictFreeze:
			if err := applier.FreezeConflict(p.Entity, p.Key, p.Conflict); err != nil {
				return omnierrors.ExternalErrorf(err, "recording CONFLICT_FREEZE for %s", p.Key)
			}
		default:
			return omnierrors.ConfigErrorf("unknown patch kind %q for %s", p.Kind, p.Key)
		}
	}
	return nil
}

// Stats summarizes a patch plan's composition.
func Stats(plan []Patch) map[PatchKind]int {
	stats := make(map[PatchKind]int)
	for _, p := range plan {
		stats[p.Kind]++
	}
	return stats
}
