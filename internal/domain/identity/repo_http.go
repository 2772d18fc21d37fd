package identity

import (
	"context"
	"net/url"

	"github.com/houkan/houkan/internal/platform/careapi"
)

// HTTPRepository implements Repository against the care-record API.
type HTTPRepository struct {
	api *careapi.Client
}

func NewHTTPRepository(api *careapi.Client) *HTTPRepository {
	return &HTTPRepository{api: api}
}

func (r *HTTPRepository) ListStaffs(ctx context.Context, status string) ([]*Staff, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out struct {
		Staffs []*Staff `json:"staffs"`
	}
	if err := r.api.Get(ctx, "/api/staffs", q, &out); err != nil {
		return nil, err
	}
	return out.Staffs, nil
}

func (r *HTTPRepository) ListPatients(ctx context.Context, status string) ([]*Patient, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out struct {
		Patients []*Patient `json:"patients"`
	}
	if err := r.api.Get(ctx, "/api/patients", q, &out); err != nil {
		return nil, err
	}
	return out.Patients, nil
}
