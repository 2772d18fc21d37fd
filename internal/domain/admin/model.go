package admin

import (
	"time"

	"github.com/google/uuid"
)

// Group is a node in the two-level office/team hierarchy. ParentID nil marks
// an office; teams carry their office's id. Position controls display order;
// groups without a position sort last.
type Group struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Position  *int       `json:"position,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Office reports whether the group is a top-level office.
func (g *Group) Office() bool { return g.ParentID == nil }

// PlanningLane is a named virtual row used to lay out visits for a day
// independent of staff. GroupID nil leaves the lane unlabeled; the group
// filter never hides visits on unlabeled lanes.
type PlanningLane struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Position  *int       `json:"position,omitempty"`
	Archived  bool       `json:"archived"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
