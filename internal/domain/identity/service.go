package identity

import (
	"context"
	"fmt"
	"sort"
)

var validStaffStatuses = map[string]bool{
	StaffActive: true, StaffInactive: true,
}

var validPatientStatuses = map[string]bool{
	PatientActive: true, PatientHospitalized: true, PatientInactive: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListStaffs returns staff sorted by name. status "" means all.
func (s *Service) ListStaffs(ctx context.Context, status string) ([]*Staff, error) {
	if status != "" && !validStaffStatuses[status] {
		return nil, fmt.Errorf("invalid staff status: %s", status)
	}
	staffs, err := s.repo.ListStaffs(ctx, status)
	if err != nil {
		return nil, err
	}
	sort.Slice(staffs, func(i, j int) bool { return staffs[i].Name < staffs[j].Name })
	return staffs, nil
}

// ListPatients returns patients sorted by name. status "" means all.
func (s *Service) ListPatients(ctx context.Context, status string) ([]*Patient, error) {
	if status != "" && !validPatientStatuses[status] {
		return nil, fmt.Errorf("invalid patient status: %s", status)
	}
	patients, err := s.repo.ListPatients(ctx, status)
	if err != nil {
		return nil, err
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].Name < patients[j].Name })
	return patients, nil
}
