package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the care-record backend seen through visit operations. The
// backend owns canonical state; Update carries the expected lock_version and
// the backend rejects stale writes with a discriminable conflict body.
type Repository interface {
	// Window returns all visits in the 7-day window starting at start,
	// keyed by date (DateLayout).
	Window(ctx context.Context, start time.Time) (map[string][]*Visit, error)
	Create(ctx context.Context, v *Visit) (*Visit, error)
	// Update sends only the given fields plus the expected lock_version.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}, lockVersion int) (*Visit, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Visit, error)
	Complete(ctx context.Context, id uuid.UUID) (*Visit, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
