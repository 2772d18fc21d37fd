package identity

import (
	"time"

	"github.com/google/uuid"
)

// Staff statuses.
const (
	StaffActive   = "active"
	StaffInactive = "inactive"
)

// Patient statuses. A hospitalized patient keeps the same data shape and
// only receives distinct treatment in views.
const (
	PatientActive       = "active"
	PatientHospitalized = "hospitalized"
	PatientInactive     = "inactive"
)

// Staff is a caregiver. GroupID nil puts the staff in the unassigned bucket
// of the group hierarchy.
type Staff struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the staff can receive new assignments.
func (s *Staff) Active() bool { return s.Status == StaffActive }

// Patient is a care recipient.
type Patient struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address,omitempty"`
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Hospitalized reports whether the patient is currently hospitalized.
func (p *Patient) Hospitalized() bool { return p.Status == PatientHospitalized }
