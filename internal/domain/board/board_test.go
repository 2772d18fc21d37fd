package board

import (
	"testing"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/domain/visit"
)

func visitWith(staffID *uuid.UUID, status string, laneID *uuid.UUID) *visit.Visit {
	return &visit.Visit{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		StaffID:        staffID,
		Status:         status,
		PlanningLaneID: laneID,
	}
}

func TestUnassignedOf(t *testing.T) {
	staffID := uuid.New()
	visits := []*visit.Visit{
		visitWith(nil, visit.StatusUnassigned, nil),
		visitWith(&staffID, visit.StatusScheduled, nil),
		visitWith(&staffID, visit.StatusUnassigned, nil),
	}

	unassigned := UnassignedOf(visits)
	if len(unassigned) != 2 {
		t.Fatalf("expected 2 unassigned, got %d", len(unassigned))
	}

	assigned := AssignedOf(visits)
	if len(assigned) != 1 {
		t.Fatalf("expected 1 assigned, got %d", len(assigned))
	}
	if assigned[0].Status != visit.StatusScheduled {
		t.Fatalf("unexpected assigned visit %+v", assigned[0])
	}
}

func TestUnassignedAndAssignedArePartitionWhenInvariantHolds(t *testing.T) {
	staffID := uuid.New()
	visits := []*visit.Visit{
		visitWith(nil, visit.StatusUnassigned, nil),
		visitWith(&staffID, visit.StatusScheduled, nil),
		visitWith(&staffID, visit.StatusCompleted, nil),
	}
	if got := len(UnassignedOf(visits)) + len(AssignedOf(visits)); got != len(visits) {
		t.Fatalf("expected a partition, got %d of %d", got, len(visits))
	}
}

func TestInSelectedGroupsPermissiveDefaults(t *testing.T) {
	laneNoGroup := uuid.New()
	laneWithGroup := uuid.New()
	groupID := uuid.New()
	laneToGroup := map[uuid.UUID]*uuid.UUID{
		laneNoGroup:   nil,
		laneWithGroup: &groupID,
	}
	empty := map[uuid.UUID]bool{}

	if !InSelectedGroups(visitWith(nil, visit.StatusUnassigned, nil), laneToGroup, empty) {
		t.Fatal("visit with no lane must never be filtered out")
	}
	if !InSelectedGroups(visitWith(nil, visit.StatusUnassigned, &laneNoGroup), laneToGroup, empty) {
		t.Fatal("visit on an unlabeled lane must never be filtered out")
	}
	unknownLane := uuid.New()
	if !InSelectedGroups(visitWith(nil, visit.StatusUnassigned, &unknownLane), laneToGroup, empty) {
		t.Fatal("visit on an unknown lane must never be filtered out")
	}
}

func TestInSelectedGroupsFiltersLabeledLanes(t *testing.T) {
	lane := uuid.New()
	groupID := uuid.New()
	otherGroup := uuid.New()
	laneToGroup := map[uuid.UUID]*uuid.UUID{lane: &groupID}

	v := visitWith(nil, visit.StatusUnassigned, &lane)
	if !InSelectedGroups(v, laneToGroup, map[uuid.UUID]bool{groupID: true}) {
		t.Fatal("visit in a selected group must pass")
	}
	if InSelectedGroups(v, laneToGroup, map[uuid.UUID]bool{otherGroup: true}) {
		t.Fatal("visit in an unselected group must be filtered")
	}
}

func TestFilterSelected(t *testing.T) {
	lane := uuid.New()
	groupID := uuid.New()
	laneToGroup := map[uuid.UUID]*uuid.UUID{lane: &groupID}
	visits := []*visit.Visit{
		visitWith(nil, visit.StatusUnassigned, &lane),
		visitWith(nil, visit.StatusUnassigned, nil),
	}

	kept := FilterSelected(visits, laneToGroup, map[uuid.UUID]bool{uuid.New(): true})
	if len(kept) != 1 || kept[0].PlanningLaneID != nil {
		t.Fatalf("expected only the laneless visit, got %v", kept)
	}
}
