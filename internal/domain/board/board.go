// Package board derives the read-only planning views from the visit set:
// unassigned and assigned subsets plus the permissive group filter. The
// derivations are pure and recomputed per request; visit sets are small
// enough that no incremental state is worth carrying.
package board

import (
	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/domain/visit"
)

// UnassignedOf returns visits with no staff or an unassigned status.
func UnassignedOf(visits []*visit.Visit) []*visit.Visit {
	var result []*visit.Visit
	for _, v := range visits {
		if v.StaffID == nil || v.Status == visit.StatusUnassigned {
			result = append(result, v)
		}
	}
	return result
}

// AssignedOf returns visits with a staff and a non-unassigned status.
func AssignedOf(visits []*visit.Visit) []*visit.Visit {
	var result []*visit.Visit
	for _, v := range visits {
		if v.StaffID != nil && v.Status != visit.StatusUnassigned {
			result = append(result, v)
		}
	}
	return result
}

// InSelectedGroups reports whether the group filter keeps the visit.
// Filtering is permissive: a visit with no lane, or whose lane carries no
// group, is never hidden.
func InSelectedGroups(v *visit.Visit, laneToGroup map[uuid.UUID]*uuid.UUID, selected map[uuid.UUID]bool) bool {
	if v.PlanningLaneID == nil {
		return true
	}
	groupID, ok := laneToGroup[*v.PlanningLaneID]
	if !ok || groupID == nil {
		return true
	}
	return selected[*groupID]
}

// FilterSelected applies InSelectedGroups over a visit list.
func FilterSelected(visits []*visit.Visit, laneToGroup map[uuid.UUID]*uuid.UUID, selected map[uuid.UUID]bool) []*visit.Visit {
	var result []*visit.Visit
	for _, v := range visits {
		if InSelectedGroups(v, laneToGroup, selected) {
			result = append(result, v)
		}
	}
	return result
}
