package visit

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day key used by the care-record API when it
// groups a schedule window by date.
const DateLayout = "2006-01-02"

// Visit statuses. The status field and staff assignment are coupled: a visit
// is unassigned exactly when it has no staff, and assigning or clearing staff
// re-derives the status. in_progress is set by the care-record backend only.
const (
	StatusUnassigned = "unassigned"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusUnassigned: true, StatusScheduled: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true,
}

// ValidDurations is the visit duration option set, in minutes.
var ValidDurations = map[int]bool{
	15: true, 30: true, 45: true, 60: true,
	90: true, 120: true, 180: true, 240: true,
}

// Visit is one scheduled appointment between a patient and at most one staff
// member. LockVersion is the optimistic-concurrency token maintained by the
// care-record backend; every mutation must send the version it last observed.
type Visit struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	StaffID         *uuid.UUID `json:"staff_id,omitempty"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	PlanningLaneID  *uuid.UUID `json:"planning_lane_id,omitempty"`
	LockVersion     int        `json:"lock_version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// GetLockVersion returns the last observed concurrency token.
func (v *Visit) GetLockVersion() int { return v.LockVersion }

// SetLockVersion sets the concurrency token.
func (v *Visit) SetLockVersion(n int) { v.LockVersion = n }

// DateKey returns the calendar day the visit is scheduled on.
func (v *Visit) DateKey() string { return v.ScheduledAt.Format(DateLayout) }

// EndsAt returns the end of the visit's time window.
func (v *Visit) EndsAt() time.Time {
	return v.ScheduledAt.Add(time.Duration(v.DurationMinutes) * time.Minute)
}

// ValidStatus reports whether s is a known visit status.
func ValidStatus(s string) bool { return validStatuses[s] }

// StatusFor derives the status a staff change implies: scheduled when a staff
// is set, unassigned when cleared.
func StatusFor(staffID *uuid.UUID) string {
	if staffID == nil {
		return StatusUnassigned
	}
	return StatusScheduled
}

// Terminal reports whether the status admits no further transitions.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// TransitionEligible reports whether cancel/complete may be attempted from
// the given status. Only scheduled and in_progress visits are eligible.
func TransitionEligible(status string) bool {
	return status == StatusScheduled || status == StatusInProgress
}
