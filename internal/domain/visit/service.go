package visit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/houkan/houkan/internal/platform/careapi"
	"github.com/houkan/houkan/internal/platform/telemetry"
)

// ErrConfirmationRequired is returned by Delete when the caller has not
// confirmed the irreversible removal. No request is issued in that case.
var ErrConfirmationRequired = errors.New("delete is irreversible and requires confirmation")

// NotEligibleError rejects a cancel/complete attempted from a status outside
// {scheduled, in_progress}.
type NotEligibleError struct {
	Status string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("visit status %q does not allow this transition", e.Status)
}

// Service is the visit assignment engine. It validates locally before any
// network call, threads the lock_version through every mutation, and never
// retries or resolves a conflict on its own; classified conflicts go back to
// the caller untouched.
//
// The service keeps the last loaded 7-day window as a read cache. The cache
// is reloaded after every successful mutation; a StaleObject conflict is
// resolved only when the caller explicitly reloads.
type Service struct {
	repo            Repository
	metrics         *telemetry.Metrics
	logger          zerolog.Logger
	defaultDuration int

	mu          sync.Mutex
	windowStart time.Time
	window      map[string][]*Visit
	byID        map[uuid.UUID]*Visit
}

func NewService(repo Repository, metrics *telemetry.Metrics, logger zerolog.Logger, defaultDuration int) *Service {
	if !ValidDurations[defaultDuration] {
		defaultDuration = 60
	}
	return &Service{
		repo:            repo,
		metrics:         metrics,
		logger:          logger,
		defaultDuration: defaultDuration,
		byID:            make(map[uuid.UUID]*Visit),
	}
}

// CreateInput is a new-visit draft. StaffID nil means unassigned.
type CreateInput struct {
	PatientID       uuid.UUID
	StaffID         *uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
	PlanningLaneID  *uuid.UUID
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Visit, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required")
	}
	duration := in.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	if !ValidDurations[duration] {
		return nil, fmt.Errorf("invalid duration: %d", duration)
	}

	draft := &Visit{
		PatientID:       in.PatientID,
		StaffID:         in.StaffID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: duration,
		Status:          StatusFor(in.StaffID),
		Notes:           in.Notes,
		PlanningLaneID:  in.PlanningLaneID,
	}
	created, err := s.repo.Create(ctx, draft)
	s.observe("create", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return created, nil
}

// Reassign is the drag-and-drop staff change. staffID nil clears the
// assignment; status is re-derived so the unassigned/staff coupling holds.
func (s *Service) Reassign(ctx context.Context, id uuid.UUID, staffID *uuid.UUID, lockVersion int) (*Visit, error) {
	fields := map[string]interface{}{
		"staff_id": staffID,
		"status":   StatusFor(staffID),
	}
	updated, err := s.repo.Update(ctx, id, fields, lockVersion)
	s.observe("reassign", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return updated, nil
}

// MoveInput describes a drop onto a different day or time slot. SetStaff
// combines a staff change with the move in one request.
type MoveInput struct {
	ScheduledAt time.Time
	SetStaff    bool
	StaffID     *uuid.UUID
	LockVersion int
}

func (s *Service) Move(ctx context.Context, id uuid.UUID, in MoveInput) (*Visit, error) {
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required")
	}
	fields := map[string]interface{}{
		"scheduled_at": in.ScheduledAt,
	}
	if in.SetStaff {
		fields["staff_id"] = in.StaffID
		fields["status"] = StatusFor(in.StaffID)
	}
	updated, err := s.repo.Update(ctx, id, fields, in.LockVersion)
	s.observe("move", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return updated, nil
}

// UpdateInput is an inline edit. Nil pointers mean "leave unchanged"; staff
// and lane carry an explicit set flag because nil is a meaningful value for
// both (clear the assignment, detach from the lane).
type UpdateInput struct {
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
	SetStaff        bool
	StaffID         *uuid.UUID
	SetLane         bool
	PlanningLaneID  *uuid.UUID
	LockVersion     int
}

// Update sends only the fields that differ from the cached copy. When
// nothing differs, no request is issued and the cached visit is returned.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Visit, error) {
	current, ok := s.cached(id)
	if !ok {
		return nil, fmt.Errorf("visit %s is not in the loaded window", id)
	}

	fields := map[string]interface{}{}
	if in.ScheduledAt != nil && !in.ScheduledAt.Equal(current.ScheduledAt) {
		fields["scheduled_at"] = *in.ScheduledAt
	}
	if in.DurationMinutes != nil && *in.DurationMinutes != current.DurationMinutes {
		if !ValidDurations[*in.DurationMinutes] {
			return nil, fmt.Errorf("invalid duration: %d", *in.DurationMinutes)
		}
		fields["duration"] = *in.DurationMinutes
	}
	if in.Notes != nil && !strPtrEqual(in.Notes, current.Notes) {
		fields["notes"] = *in.Notes
	}
	if in.SetStaff && !uuidPtrEqual(in.StaffID, current.StaffID) {
		fields["staff_id"] = in.StaffID
		fields["status"] = StatusFor(in.StaffID)
	}
	if in.SetLane && !uuidPtrEqual(in.PlanningLaneID, current.PlanningLaneID) {
		fields["planning_lane_id"] = in.PlanningLaneID
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, fields, in.LockVersion)
	s.observe("update", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Visit, error) {
	if current, ok := s.cached(id); ok && !TransitionEligible(current.Status) {
		return nil, &NotEligibleError{Status: current.Status}
	}
	updated, err := s.repo.Cancel(ctx, id)
	s.observe("cancel", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return updated, nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Visit, error) {
	if current, ok := s.cached(id); ok && !TransitionEligible(current.Status) {
		return nil, &NotEligibleError{Status: current.Status}
	}
	updated, err := s.repo.Complete(ctx, id)
	s.observe("complete", err)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return updated, nil
}

// Delete hard-removes a visit from any status. The confirmation flag must be
// set by the caller; unconfirmed calls never reach the collaborator.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	err := s.repo.Delete(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// Window loads the 7-day window starting at start and replaces the cache.
func (s *Service) Window(ctx context.Context, start time.Time) (map[string][]*Visit, error) {
	days, err := s.repo.Window(ctx, start)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.windowStart = start
	s.window = days
	s.byID = make(map[uuid.UUID]*Visit)
	for _, visits := range days {
		for _, v := range visits {
			s.byID[v.ID] = v
		}
	}
	s.mu.Unlock()
	return days, nil
}

// Reload refetches the cached window. Callers use it to resolve a
// StaleObject conflict by discarding their view of the world.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	start := s.windowStart
	s.mu.Unlock()
	if start.IsZero() {
		return nil
	}
	_, err := s.Window(ctx, start)
	return err
}

// Cached returns the cached copy of a visit, if the loaded window holds it.
func (s *Service) Cached(id uuid.UUID) (*Visit, bool) {
	return s.cached(id)
}

func (s *Service) cached(id uuid.UUID) (*Visit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	return v, ok
}

// reload refreshes the window after a successful mutation. A refresh failure
// is logged, not returned: the mutation itself already succeeded.
func (s *Service) reload(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("window reload after mutation failed")
	}
}

func (s *Service) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	kind := careapi.Classify(err)
	outcome := "ok"
	if err != nil {
		outcome = kind.String()
	}
	s.metrics.ObserveMutation(operation, outcome)
	if kind == careapi.KindNetwork {
		s.metrics.ObserveUpstreamError()
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
