package identity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeApplier struct {
	created    map[string]uuid.UUID
	backfilled map[string]uuid.UUID
	frozen     map[string]map[string]uuid.UUID
	failOn     PatchKind
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{
		created:    map[string]uuid.UUID{},
		backfilled: map[string]uuid.UUID{},
		frozen:     map[string]map[string]uuid.UUID{},
	}
}

func (f *fakeApplier) CreateProject(entity EntityKind, key string, id uuid.UUID) error {
	if f.failOn == PatchCreate {
		return errors.New("boom")
	}
	f.created[key] = id
	return nil
}

func (f *fakeApplier) BackfillUUID(entity EntityKind, key string, id uuid.UUID) error {
	if f.failOn == PatchBackfillUUID {
		return errors.New("boom")
	}
	f.backfilled[key] = id
	return nil
}

func (f *fakeApplier) FreezeConflict(entity EntityKind, key string, authorities map[string]uuid.UUID) error {
	if f.failOn == PatchConflictFreeze {
		return errors.New("boom")
	}
	f.frozen[key] = authorities
	return nil
}

func TestPlanPatchByCMPStatus(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		status    Status
		cmpStatus CMPStatus
		want      PatchKind
	}{
		{StatusConverged, CMPFoundWithUUID, PatchNoOp},
		{StatusKeyed, CMPFoundNoUUID, PatchBackfillUUID},
		{StatusDiscovered, CMPMissing, PatchCreate},
	}
	for _, tt := range tests {
		p := PlanPatch(EntityProject, "k", tt.status, tt.cmpStatus, id, nil)
		assert.Equal(t, tt.want, p.Kind)
	}
}

func TestPlanPatchConflictCarriesAuthoritiesRegardlessOfCMPStatus(t *testing.T) {
	authorities := map[string]uuid.UUID{"database": uuid.New(), "legacy": uuid.New()}
	p := PlanPatch(EntityProject, "k", StatusConflict, CMPFoundWithUUID, uuid.Nil, authorities)

	assert.Equal(t, PatchConflictFreeze, p.Kind)
	assert.Equal(t, authorities, p.Conflict)
	assert.Equal(t, uuid.Nil, p.UUID, "a conflict freeze must never carry a chosen UUID")
}

func TestApplySkipsNoOp(t *testing.T) {
	applier := newFakeApplier()
	plan := []Patch{{Kind: PatchNoOp, Key: "k"}}

	assert.NoError(t, Apply(applier, plan))
	assert.Empty(t, applier.created)
}

func TestApplyDispatchesEachKind(t *testing.T) {
	applier := newFakeApplier()
	createID := uuid.New()
	backfillID := uuid.New()
	authorities := map[string]uuid.UUID{"database": uuid.New()}

	plan := []Patch{
		{Kind: PatchCreate, Key: "a", UUID: createID},
		{Kind: PatchBackfillUUID, Key: "b", UUID: backfillID},
		{Kind: PatchConflictFreeze, Key: "c", Conflict: authorities},
	}

	assert.NoError(t, Apply(applier, plan))
	assert.Equal(t, createID, applier.created["a"])
	assert.Equal(t, backfillID, applier.backfilled["b"])
	assert.Equal(t, authorities, applier.frozen["c"])
}

func TestApplyPropagatesApplierError(t *testing.T) {
	applier := newFakeApplier()
	applier.failOn = PatchCreate
	plan := []Patch{{Kind: PatchCreate, Key: "a", UUID: uuid.New()}}

	err := Apply(applier, plan)
	assert.Error(t, err)
}

func TestApplyRejectsUnknownKind(t *testing.T) {
	applier := newFakeApplier()
	plan := []Patch{{Kind: PatchKind("bogus"), Key: "a"}}

	err := Apply(applier, plan)
	assert.Error(t, err)
}

func TestStatsCountsByKind(t *testing.T) {
	plan := []Patch{
		{Kind: PatchNoOp},
		{Kind: PatchNoOp},
		{Kind: PatchCreate},
		{Kind: PatchConflictFreeze},
	}
	stats := Stats(plan)

	assert.Equal(t, 2, stats[PatchNoOp])
	assert.Equal(t, 1, stats[PatchCreate])
	assert.Equal(t, 1, stats[PatchConflictFreeze])
}
