package admin

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads groups and manages planning lanes on the care-record
// backend.
type Repository interface {
	ListGroups(ctx context.Context) ([]*Group, error)
	ListLanes(ctx context.Context) ([]*PlanningLane, error)
	CreateLane(ctx context.Context, lane *PlanningLane) (*PlanningLane, error)
	// UpdateLane sends only the given fields.
	UpdateLane(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*PlanningLane, error)
}
