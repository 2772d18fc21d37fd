package pattern

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Pattern frequencies. The monthly variants refer to the ordinal occurrence
// of the pattern's weekday within the calendar month.
const (
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly13 = "monthly_1_3"
	FrequencyMonthly24 = "monthly_2_4"
)

var validFrequencies = map[string]bool{
	FrequencyWeekly: true, FrequencyBiweekly: true,
	FrequencyMonthly13: true, FrequencyMonthly24: true,
}

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f string) bool { return validFrequencies[f] }

// Pattern is a recurring weekly template. Its lifecycle is independent of
// the visits it spawns: editing a pattern never touches generated visits.
type Pattern struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	DefaultStaffID  *uuid.UUID `json:"default_staff_id,omitempty"`
	DayOfWeek       int        `json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime       string     `json:"start_time"`  // "HH:mm"
	DurationMinutes int        `json:"duration"`
	Frequency       string     `json:"frequency"`
	PlanningLaneID  *uuid.UUID `json:"planning_lane_id,omitempty"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StartClock parses the HH:mm start time.
func (p *Pattern) StartClock() (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", p.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start_time %q", p.StartTime)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// Weekday returns the pattern's day as a time.Weekday.
func (p *Pattern) Weekday() time.Weekday { return time.Weekday(p.DayOfWeek) }
