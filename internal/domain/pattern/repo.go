package pattern

import (
	"context"

	"github.com/google/uuid"
)

// Repository is pattern CRUD on the care-record backend.
type Repository interface {
	List(ctx context.Context) ([]*Pattern, error)
	Create(ctx context.Context, p *Pattern) (*Pattern, error)
	// Update sends only the given fields.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Pattern, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
