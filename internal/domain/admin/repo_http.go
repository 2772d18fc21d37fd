package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/platform/careapi"
)

// HTTPRepository implements Repository against the care-record API.
type HTTPRepository struct {
	api *careapi.Client
}

func NewHTTPRepository(api *careapi.Client) *HTTPRepository {
	return &HTTPRepository{api: api}
}

func (r *HTTPRepository) ListGroups(ctx context.Context) ([]*Group, error) {
	var out struct {
		Groups []*Group `json:"groups"`
	}
	if err := r.api.Get(ctx, "/api/groups", nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (r *HTTPRepository) ListLanes(ctx context.Context) ([]*PlanningLane, error) {
	var out struct {
		Lanes []*PlanningLane `json:"planning_lanes"`
	}
	if err := r.api.Get(ctx, "/api/planning_lanes", nil, &out); err != nil {
		return nil, err
	}
	return out.Lanes, nil
}

func (r *HTTPRepository) CreateLane(ctx context.Context, lane *PlanningLane) (*PlanningLane, error) {
	body := map[string]interface{}{"planning_lane": lane}
	var created PlanningLane
	if err := r.api.Post(ctx, "/api/planning_lanes", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *HTTPRepository) UpdateLane(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*PlanningLane, error) {
	body := map[string]interface{}{"planning_lane": fields}
	var updated PlanningLane
	if err := r.api.Patch(ctx, "/api/planning_lanes/"+id.String(), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
