package visit

import (
	"context"
	"net/url"
	"time"

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

func (r *HTTPRepository) Window(ctx context.Context, start time.Time) (map[string][]*Visit, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(DateLayout))

	var out struct {
		Days map[string][]*Visit `json:"days"`
	}
	if err := r.api.Get(ctx, "/api/schedule", q, &out); err != nil {
		return nil, err
	}
	if out.Days == nil {
		out.Days = map[string][]*Visit{}
	}
	return out.Days, nil
}

func (r *HTTPRepository) Create(ctx context.Context, v *Visit) (*Visit, error) {
	body := map[string]interface{}{"visit": v}
	var created Visit
	if err := r.api.Post(ctx, "/api/visits", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *HTTPRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}, lockVersion int) (*Visit, error) {
	body := map[string]interface{}{
		"visit":        fields,
		"lock_version": lockVersion,
	}
	var updated Visit
	if err := r.api.Patch(ctx, "/api/visits/"+id.String(), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *HTTPRepository) Cancel(ctx context.Context, id uuid.UUID) (*Visit, error) {
	var updated Visit
	if err := r.api.Post(ctx, "/api/visits/"+id.String()+"/cancel", nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *HTTPRepository) Complete(ctx context.Context, id uuid.UUID) (*Visit, error) {
	var updated Visit
	if err := r.api.Post(ctx, "/api/visits/"+id.String()+"/complete", nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.api.Delete(ctx, "/api/visits/"+id.String())
}
