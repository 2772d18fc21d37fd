package admin

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/houkan/houkan/internal/domain/visit"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/groups/tree", h.GroupTree)
	api.GET("/lanes", h.ListLanes)
	api.POST("/lanes", h.CreateLane)
	api.PATCH("/lanes/:id", h.UpdateLane)
}

// treeNode is the wire shape of one office subtree.
type treeNode struct {
	Office  *Group      `json:"office"`
	Members *Members    `json:"members"`
	Teams   []*teamNode `json:"teams"`
}

type teamNode struct {
	Team    *Group   `json:"team"`
	Label   string   `json:"label"`
	Members *Members `json:"members"`
}

func (h *Handler) GroupTree(c echo.Context) error {
	hierarchy, err := h.svc.Hierarchy(c.Request().Context())
	if err != nil {
		return visit.MapError(err)
	}

	tree := []*treeNode{}
	for _, node := range hierarchy.OfficesWithTeams() {
		tn := &treeNode{
			Office:  node.Office,
			Members: hierarchy.MembersOf(node.Office.ID),
			Teams:   []*teamNode{},
		}
		for _, team := range node.Teams {
			tn.Teams = append(tn.Teams, &teamNode{
				Team:    team,
				Label:   hierarchy.LabelFor(team.ID),
				Members: hierarchy.MembersOf(team.ID),
			})
		}
		tree = append(tree, tn)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"offices":    tree,
		"unassigned": hierarchy.Unassigned(),
	})
}

func (h *Handler) ListLanes(c echo.Context) error {
	includeArchived := c.QueryParam("include_archived") == "true"
	lanes, err := h.svc.Lanes(c.Request().Context(), includeArchived)
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"lanes": lanes})
}

type createLaneRequest struct {
	Name     string     `json:"name" validate:"required"`
	GroupID  *uuid.UUID `json:"group_id"`
	Position *int       `json:"position"`
}

func (h *Handler) CreateLane(c echo.Context) error {
	var req createLaneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	lane, err := h.svc.CreateLane(c.Request().Context(), req.Name, req.GroupID, req.Position)
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusCreated, lane)
}

type updateLaneRequest struct {
	Name     *string `json:"name"`
	Archived *bool   `json:"archived"`
	Position *int    `json:"position"`
}

func (h *Handler) UpdateLane(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateLaneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var lane *PlanningLane
	switch {
	case req.Name != nil:
		lane, err = h.svc.RenameLane(ctx, id, *req.Name)
	case req.Archived != nil:
		lane, err = h.svc.ArchiveLane(ctx, id, *req.Archived)
	case req.Position != nil:
		lane, err = h.svc.ReorderLane(ctx, id, *req.Position)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusOK, lane)
}
