package board

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/houkan/houkan/internal/domain/admin"
	"github.com/houkan/houkan/internal/domain/visit"
)

// VisitSource supplies the 7-day visit window.
type VisitSource interface {
	Window(ctx context.Context, start time.Time) (map[string][]*visit.Visit, error)
}

// AdminSource supplies lanes and the group hierarchy.
type AdminSource interface {
	Hierarchy(ctx context.Context) (*admin.Hierarchy, error)
	Lanes(ctx context.Context, includeArchived bool) ([]*admin.PlanningLane, error)
}

type Handler struct {
	visits VisitSource
	admin  AdminSource
}

func NewHandler(visits VisitSource, adminSvc AdminSource) *Handler {
	return &Handler{visits: visits, admin: adminSvc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/board", h.Board)
}

type boardResponse struct {
	StartDate  string                    `json:"start_date"`
	Days       map[string][]*visit.Visit `json:"days"`
	Unassigned []*visit.Visit            `json:"unassigned"`
	Assigned   []*visit.Visit            `json:"assigned"`
	Lanes      []*admin.PlanningLane     `json:"lanes"`
	Labels     map[string]string         `json:"labels"`
	// Patients currently hospitalized; their visits render flagged.
	Hospitalized []uuid.UUID `json:"hospitalized"`
}

// Board returns the week window with derived sets. groups= narrows the view
// to lanes labeled with the given group ids; unlabeled lanes always show.
func (h *Handler) Board(c echo.Context) error {
	start, err := parseStartDate(c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	selected, err := parseGroupIDs(c.QueryParam("groups"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	days, err := h.visits.Window(ctx, start)
	if err != nil {
		return visit.MapError(err)
	}
	// Archived lanes are hidden from the lane list but still label their
	// historical visits, so the lane-to-group map covers all of them.
	allLanes, err := h.admin.Lanes(ctx, true)
	if err != nil {
		return visit.MapError(err)
	}
	hierarchy, err := h.admin.Hierarchy(ctx)
	if err != nil {
		return visit.MapError(err)
	}

	laneToGroup := make(map[uuid.UUID]*uuid.UUID, len(allLanes))
	var visibleLanes []*admin.PlanningLane
	for _, lane := range allLanes {
		laneToGroup[lane.ID] = lane.GroupID
		if !lane.Archived {
			visibleLanes = append(visibleLanes, lane)
		}
	}

	resp := boardResponse{
		StartDate:    start.Format(visit.DateLayout),
		Days:         make(map[string][]*visit.Visit, len(days)),
		Lanes:        visibleLanes,
		Labels:       map[string]string{},
		Hospitalized: hierarchy.HospitalizedPatientIDs(),
	}
	var all []*visit.Visit
	for key, dayVisits := range days {
		kept := dayVisits
		if len(selected) > 0 {
			kept = FilterSelected(dayVisits, laneToGroup, selected)
		}
		resp.Days[key] = kept
		all = append(all, kept...)
	}
	resp.Unassigned = UnassignedOf(all)
	resp.Assigned = AssignedOf(all)
	for _, lane := range allLanes {
		if lane.GroupID != nil {
			resp.Labels[lane.GroupID.String()] = hierarchy.LabelFor(*lane.GroupID)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func parseStartDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	start, err := time.Parse(visit.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date")
	}
	return start, nil
}

func parseGroupIDs(raw string) (map[uuid.UUID]bool, error) {
	selected := map[uuid.UUID]bool{}
	if raw == "" {
		return selected, nil
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid group id %q", part)
		}
		selected[id] = true
	}
	return selected, nil
}
