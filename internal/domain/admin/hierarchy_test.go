package admin

import (
	"testing"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/domain/identity"
)

func group(name string, parentID *uuid.UUID, position *int) *Group {
	return &Group{ID: uuid.New(), Name: name, ParentID: parentID, Position: position}
}

func intp(n int) *int { return &n }

func TestHierarchyOfficesWithTeams(t *testing.T) {
	office := group("East Office", nil, intp(1))
	teamA := group("Team A", &office.ID, intp(2))
	teamB := group("Team B", &office.ID, intp(1))

	h := NewHierarchy([]*Group{office, teamA, teamB}, nil, nil)
	nodes := h.OfficesWithTeams()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 office, got %d", len(nodes))
	}
	if len(nodes[0].Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(nodes[0].Teams))
	}
	if nodes[0].Teams[0].Name != "Team B" {
		t.Fatalf("expected position order, got %s first", nodes[0].Teams[0].Name)
	}
}

func TestHierarchyDropsTeamUnderTeam(t *testing.T) {
	office := group("Office", nil, nil)
	team := group("Team", &office.ID, nil)
	nested := group("Nested", &team.ID, nil)

	h := NewHierarchy([]*Group{office, team, nested}, nil, nil)
	nodes := h.OfficesWithTeams()
	if len(nodes) != 1 || len(nodes[0].Teams) != 1 {
		t.Fatalf("expected the nested branch dropped, got %+v", nodes)
	}
	if h.Contains(nested.ID) {
		t.Fatal("dropped branch must not be contained")
	}
	if !h.Contains(team.ID) {
		t.Fatal("valid team must be contained")
	}
}

func TestHierarchyDropsOrphanTeam(t *testing.T) {
	missing := uuid.New()
	orphan := group("Orphan", &missing, nil)

	h := NewHierarchy([]*Group{orphan}, nil, nil)
	if len(h.OfficesWithTeams()) != 0 {
		t.Fatal("orphan team must not become an office")
	}
}

func TestHierarchyNilPositionSortsLast(t *testing.T) {
	first := group("Zeta", nil, intp(1))
	unpositioned := group("Alpha", nil, nil)

	h := NewHierarchy([]*Group{unpositioned, first}, nil, nil)
	nodes := h.OfficesWithTeams()
	if nodes[0].Office.Name != "Zeta" {
		t.Fatalf("positioned group must sort before nil position, got %s first", nodes[0].Office.Name)
	}
}

func TestHierarchyLabelFor(t *testing.T) {
	office := group("East Office", nil, nil)
	team := group("Team A", &office.ID, nil)

	h := NewHierarchy([]*Group{office, team}, nil, nil)
	if got := h.LabelFor(office.ID); got != "East Office" {
		t.Fatalf("unexpected office label %q", got)
	}
	if got := h.LabelFor(team.ID); got != "East Office > Team A" {
		t.Fatalf("unexpected team label %q", got)
	}
	if got := h.LabelFor(uuid.New()); got != "" {
		t.Fatalf("unknown group must label empty, got %q", got)
	}
}

func TestHierarchyMembersAndUnassignedBucket(t *testing.T) {
	office := group("Office", nil, nil)
	staffIn := &identity.Staff{ID: uuid.New(), Name: "Kato", GroupID: &office.ID, Status: identity.StaffActive}
	staffOut := &identity.Staff{ID: uuid.New(), Name: "Mori", Status: identity.StaffActive}
	patient := &identity.Patient{ID: uuid.New(), Name: "Sato", GroupID: &office.ID, Status: identity.PatientActive}

	h := NewHierarchy([]*Group{office}, []*identity.Staff{staffIn, staffOut}, []*identity.Patient{patient})

	members := h.MembersOf(office.ID)
	if len(members.Staffs) != 1 || members.Staffs[0].Name != "Kato" {
		t.Fatalf("unexpected office staff %v", members.Staffs)
	}
	if len(members.Patients) != 1 {
		t.Fatalf("unexpected office patients %v", members.Patients)
	}
	if len(h.Unassigned().Staffs) != 1 || h.Unassigned().Staffs[0].Name != "Mori" {
		t.Fatalf("unexpected unassigned staff %v", h.Unassigned().Staffs)
	}
	if got := h.MembersOf(uuid.New()); len(got.Staffs) != 0 || len(got.Patients) != 0 {
		t.Fatal("unknown group must have no members")
	}
}

func TestHierarchyMemberOfUnknownGroupGoesUnassigned(t *testing.T) {
	missing := uuid.New()
	staff := &identity.Staff{ID: uuid.New(), Name: "Abe", GroupID: &missing, Status: identity.StaffActive}

	h := NewHierarchy(nil, []*identity.Staff{staff}, nil)
	if len(h.Unassigned().Staffs) != 1 {
		t.Fatal("member of an unknown group must land in the unassigned bucket")
	}
}

func TestHierarchyHospitalizedPatientIDs(t *testing.T) {
	office := group("Office", nil, nil)
	inGroup := &identity.Patient{ID: uuid.New(), Name: "Sato", GroupID: &office.ID, Status: identity.PatientHospitalized}
	active := &identity.Patient{ID: uuid.New(), Name: "Ito", GroupID: &office.ID, Status: identity.PatientActive}
	loose := &identity.Patient{ID: uuid.New(), Name: "Yama", Status: identity.PatientHospitalized}

	h := NewHierarchy([]*Group{office}, nil, []*identity.Patient{inGroup, active, loose})
	ids := h.HospitalizedPatientIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 hospitalized patients, got %d", len(ids))
	}
	found := map[uuid.UUID]bool{ids[0]: true, ids[1]: true}
	if !found[inGroup.ID] || !found[loose.ID] {
		t.Fatalf("unexpected ids %v", ids)
	}
}
