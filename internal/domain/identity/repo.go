package identity

import "context"

// Repository reads staff and patient reference data from the care-record
// backend. An empty status returns everyone.
type Repository interface {
	ListStaffs(ctx context.Context, status string) ([]*Staff, error)
	ListPatients(ctx context.Context, status string) ([]*Patient, error)
}
