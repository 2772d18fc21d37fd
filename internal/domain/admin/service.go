package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/houkan/houkan/internal/domain/identity"
)

type Service struct {
	repo     Repository
	identity identity.Repository
}

func NewService(repo Repository, id identity.Repository) *Service {
	return &Service{repo: repo, identity: id}
}

// Hierarchy loads groups and members and builds the office/team index.
func (s *Service) Hierarchy(ctx context.Context) (*Hierarchy, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	staffs, err := s.identity.ListStaffs(ctx, "")
	if err != nil {
		return nil, err
	}
	patients, err := s.identity.ListPatients(ctx, "")
	if err != nil {
		return nil, err
	}
	return NewHierarchy(groups, staffs, patients), nil
}

// Lanes returns lanes in display order. Archived lanes are excluded unless
// asked for; they still label their historical visits.
func (s *Service) Lanes(ctx context.Context, includeArchived bool) ([]*PlanningLane, error) {
	lanes, err := s.repo.ListLanes(ctx)
	if err != nil {
		return nil, err
	}
	result := lanes[:0:0]
	for _, lane := range lanes {
		if lane.Archived && !includeArchived {
			continue
		}
		result = append(result, lane)
	}
	sortLanes(result)
	return result, nil
}

func (s *Service) CreateLane(ctx context.Context, name string, groupID *uuid.UUID, position *int) (*PlanningLane, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.repo.CreateLane(ctx, &PlanningLane{Name: name, GroupID: groupID, Position: position})
}

func (s *Service) RenameLane(ctx context.Context, id uuid.UUID, name string) (*PlanningLane, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.repo.UpdateLane(ctx, id, map[string]interface{}{"name": name})
}

func (s *Service) ArchiveLane(ctx context.Context, id uuid.UUID, archived bool) (*PlanningLane, error) {
	return s.repo.UpdateLane(ctx, id, map[string]interface{}{"archived": archived})
}

func (s *Service) ReorderLane(ctx context.Context, id uuid.UUID, position int) (*PlanningLane, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must not be negative")
	}
	return s.repo.UpdateLane(ctx, id, map[string]interface{}{"position": position})
}

func sortLanes(lanes []*PlanningLane) {
	sort.SliceStable(lanes, func(i, j int) bool {
		li, lj := lanes[i], lanes[j]
		switch {
		case li.Position == nil && lj.Position == nil:
			return li.Name < lj.Name
		case li.Position == nil:
			return false
		case lj.Position == nil:
			return true
		case *li.Position != *lj.Position:
			return *li.Position < *lj.Position
		default:
			return li.Name < lj.Name
		}
	})
}
