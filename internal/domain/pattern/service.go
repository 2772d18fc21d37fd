package pattern

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/houkan/houkan/internal/domain/visit"
	"github.com/houkan/houkan/internal/platform/careapi"
	"github.com/houkan/houkan/internal/platform/telemetry"
)

// VisitGateway is the slice of the visit repository a generate run needs:
// the existing schedule for blocking and a way to create the drafts.
type VisitGateway interface {
	Window(ctx context.Context, start time.Time) (map[string][]*visit.Visit, error)
	Create(ctx context.Context, v *visit.Visit) (*visit.Visit, error)
}

type Service struct {
	repo    Repository
	visits  VisitGateway
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

func NewService(repo Repository, visits VisitGateway, metrics *telemetry.Metrics, logger zerolog.Logger) *Service {
	return &Service{repo: repo, visits: visits, metrics: metrics, logger: logger}
}

// -- CRUD --

func (s *Service) List(ctx context.Context) ([]*Pattern, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, p *Pattern) (*Pattern, error) {
	if err := validatePattern(p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Pattern, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("nothing to update")
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validatePattern(p *Pattern) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0..6, got %d", p.DayOfWeek)
	}
	if _, _, err := p.StartClock(); err != nil {
		return err
	}
	if !visit.ValidDurations[p.DurationMinutes] {
		return fmt.Errorf("invalid duration: %d", p.DurationMinutes)
	}
	if !ValidFrequency(p.Frequency) {
		return fmt.Errorf("invalid frequency: %s", p.Frequency)
	}
	return nil
}

func validateFields(fields map[string]interface{}) error {
	if f, ok := fields["frequency"].(string); ok && !ValidFrequency(f) {
		return fmt.Errorf("invalid frequency: %s", f)
	}
	if d, ok := fields["day_of_week"].(int); ok && (d < 0 || d > 6) {
		return fmt.Errorf("day_of_week must be 0..6, got %d", d)
	}
	if d, ok := fields["duration"].(int); ok && !visit.ValidDurations[d] {
		return fmt.Errorf("invalid duration: %d", d)
	}
	return nil
}

// -- Generate --

// GenerateInput selects the closed date range and the weekdays to fill. An
// empty weekday selection yields an empty run, not an error.
type GenerateInput struct {
	Start    time.Time
	End      time.Time
	Weekdays []time.Weekday
	DryRun   bool
}

// GenerateFailure records one date's creation failure. One failed date
// never aborts the rest of the batch.
type GenerateFailure struct {
	Date    string `json:"date"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GenerateResult is the batch report.
type GenerateResult struct {
	DryRun       bool               `json:"dry_run"`
	Planned      []*visit.Visit     `json:"planned,omitempty"`
	Created      []*visit.Visit     `json:"created"`
	SkippedDates []string           `json:"skipped_dates"`
	Failures     []*GenerateFailure `json:"failures"`
}

// Generate expands the active patterns over the range and issues the
// creations sequentially, collecting per-date failures.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, fmt.Errorf("start and end are required")
	}
	if in.End.Before(in.Start) {
		return nil, fmt.Errorf("end must not be before start")
	}

	weekdays := make(map[time.Weekday]bool, len(in.Weekdays))
	for _, wd := range in.Weekdays {
		weekdays[wd] = true
	}

	result := &GenerateResult{
		DryRun:       in.DryRun,
		Created:      []*visit.Visit{},
		SkippedDates: []string{},
		Failures:     []*GenerateFailure{},
	}
	if len(weekdays) == 0 {
		return result, nil
	}

	patterns, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedDates(ctx, in.Start, in.End)
	if err != nil {
		return nil, err
	}

	drafts, skipped := Expand(patterns, blocked, in.Start, in.End, weekdays)
	result.SkippedDates = append(result.SkippedDates, skipped...)

	if in.DryRun {
		result.Planned = drafts
		return result, nil
	}

	for _, draft := range drafts {
		created, err := s.visits.Create(ctx, draft)
		if err != nil {
			kind := careapi.Classify(err)
			s.logger.Warn().Err(err).
				Str("date", draft.DateKey()).
				Str("kind", kind.String()).
				Msg("pattern expansion creation failed")
			result.Failures = append(result.Failures, &GenerateFailure{
				Date:    draft.DateKey(),
				Kind:    kind.String(),
				Message: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, created)
	}

	if s.metrics != nil {
		s.metrics.ObserveExpansion(len(result.Created), len(result.SkippedDates), len(result.Failures))
	}
	return result, nil
}

// blockedDates loads the existing schedule across the range by stepping
// through 7-day windows and marks every date that already has any visit.
func (s *Service) blockedDates(ctx context.Context, start, end time.Time) (map[string]bool, error) {
	blocked := map[string]bool{}
	for ws := dateOnly(start); !ws.After(dateOnly(end)); ws = ws.AddDate(0, 0, 7) {
		days, err := s.visits.Window(ctx, ws)
		if err != nil {
			return nil, err
		}
		for key, visits := range days {
			if len(visits) > 0 {
				blocked[key] = true
			}
		}
	}
	return blocked, nil
}
