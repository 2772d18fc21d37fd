package pattern

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

func (r *HTTPRepository) List(ctx context.Context) ([]*Pattern, error) {
	var out struct {
		Patterns []*Pattern `json:"visit_patterns"`
	}
	if err := r.api.Get(ctx, "/api/visit_patterns", nil, &out); err != nil {
		return nil, err
	}
	return out.Patterns, nil
}

func (r *HTTPRepository) Create(ctx context.Context, p *Pattern) (*Pattern, error) {
	body := map[string]interface{}{"visit_pattern": p}
	var created Pattern
	if err := r.api.Post(ctx, "/api/visit_patterns", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *HTTPRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Pattern, error) {
	body := map[string]interface{}{"visit_pattern": fields}
	var updated Pattern
	if err := r.api.Patch(ctx, "/api/visit_patterns/"+id.String(), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.api.Delete(ctx, "/api/visit_patterns/"+id.String())
}
