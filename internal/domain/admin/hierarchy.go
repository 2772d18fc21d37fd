package admin

import (
	"sort"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/domain/identity"
)

// Members are the staff and patients attached to one group, or to the
// unassigned bucket.
type Members struct {
	Staffs   []*identity.Staff   `json:"staffs"`
	Patients []*identity.Patient `json:"patients"`
}

// OfficeNode is an office with its teams in display order.
type OfficeNode struct {
	Office *Group   `json:"office"`
	Teams  []*Group `json:"teams"`
}

// Hierarchy is the derived office/team/membership index built from the flat
// group list. A team whose parent is itself a team is a data error; that
// branch is dropped during the build instead of failing it.
type Hierarchy struct {
	byID       map[uuid.UUID]*Group
	offices    []*Group
	teams      map[uuid.UUID][]*Group
	members    map[uuid.UUID]*Members
	unassigned *Members
}

// NewHierarchy builds the index from groups and their members.
func NewHierarchy(groups []*Group, staffs []*identity.Staff, patients []*identity.Patient) *Hierarchy {
	h := &Hierarchy{
		byID:       make(map[uuid.UUID]*Group, len(groups)),
		teams:      make(map[uuid.UUID][]*Group),
		members:    make(map[uuid.UUID]*Members),
		unassigned: &Members{},
	}
	for _, g := range groups {
		h.byID[g.ID] = g
	}
	for _, g := range groups {
		if g.Office() {
			h.offices = append(h.offices, g)
			continue
		}
		parent, ok := h.byID[*g.ParentID]
		if !ok || !parent.Office() {
			// Team under a missing or non-office parent: drop the branch.
			continue
		}
		h.teams[parent.ID] = append(h.teams[parent.ID], g)
	}
	sortGroups(h.offices)
	for _, teams := range h.teams {
		sortGroups(teams)
	}

	for _, s := range staffs {
		h.bucketFor(s.GroupID).Staffs = append(h.bucketFor(s.GroupID).Staffs, s)
	}
	for _, p := range patients {
		h.bucketFor(p.GroupID).Patients = append(h.bucketFor(p.GroupID).Patients, p)
	}
	return h
}

func (h *Hierarchy) bucketFor(groupID *uuid.UUID) *Members {
	if groupID == nil {
		return h.unassigned
	}
	if _, ok := h.byID[*groupID]; !ok {
		return h.unassigned
	}
	m, ok := h.members[*groupID]
	if !ok {
		m = &Members{}
		h.members[*groupID] = m
	}
	return m
}

// OfficesWithTeams returns offices in display order, each with its teams.
func (h *Hierarchy) OfficesWithTeams() []*OfficeNode {
	nodes := make([]*OfficeNode, 0, len(h.offices))
	for _, office := range h.offices {
		nodes = append(nodes, &OfficeNode{Office: office, Teams: h.teams[office.ID]})
	}
	return nodes
}

// MembersOf returns the members attached directly to the group.
func (h *Hierarchy) MembersOf(groupID uuid.UUID) *Members {
	if m, ok := h.members[groupID]; ok {
		return m
	}
	return &Members{}
}

// Unassigned returns the bucket for entities with no group.
func (h *Hierarchy) Unassigned() *Members {
	return h.unassigned
}

// HospitalizedPatientIDs returns the ids of currently hospitalized patients
// across every bucket, the unassigned one included, in stable order.
func (h *Hierarchy) HospitalizedPatientIDs() []uuid.UUID {
	var ids []uuid.UUID
	collect := func(m *Members) {
		for _, p := range m.Patients {
			if p.Hospitalized() {
				ids = append(ids, p.ID)
			}
		}
	}
	for _, m := range h.members {
		collect(m)
	}
	collect(h.unassigned)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// LabelFor returns "office > team" for a team, the bare name for an office,
// and "" for an unknown group.
func (h *Hierarchy) LabelFor(groupID uuid.UUID) string {
	g, ok := h.byID[groupID]
	if !ok {
		return ""
	}
	if g.Office() {
		return g.Name
	}
	parent, ok := h.byID[*g.ParentID]
	if !ok || !parent.Office() {
		return g.Name
	}
	return parent.Name + " > " + g.Name
}

// Contains reports whether the group survived the build (dropped branches
// are not contained).
func (h *Hierarchy) Contains(groupID uuid.UUID) bool {
	g, ok := h.byID[groupID]
	if !ok {
		return false
	}
	if g.Office() {
		return true
	}
	for _, team := range h.teams[*g.ParentID] {
		if team.ID == groupID {
			return true
		}
	}
	return false
}

// sortGroups orders by position, nil positions last, ties by name.
func sortGroups(groups []*Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i], groups[j]
		switch {
		case gi.Position == nil && gj.Position == nil:
			return gi.Name < gj.Name
		case gi.Position == nil:
			return false
		case gj.Position == nil:
			return true
		case *gi.Position != *gj.Position:
			return *gi.Position < *gj.Position
		default:
			return gi.Name < gj.Name
		}
	})
}
