package visit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sony/gobreaker"

	"github.com/houkan/houkan/internal/platform/careapi"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/visits", h.Create)
	api.POST("/visits/:id/reassign", h.Reassign)
	api.POST("/visits/:id/move", h.Move)
	api.PATCH("/visits/:id", h.Update)
	api.POST("/visits/:id/cancel", h.Cancel)
	api.POST("/visits/:id/complete", h.Complete)
	api.DELETE("/visits/:id", h.Delete)
}

type createRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" validate:"required"`
	StaffID        *uuid.UUID `json:"staff_id"`
	ScheduledAt    time.Time  `json:"scheduled_at" validate:"required"`
	Duration       int        `json:"duration" validate:"gte=0"`
	Notes          *string    `json:"notes"`
	PlanningLaneID *uuid.UUID `json:"planning_lane_id"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), CreateInput{
		PatientID:       req.PatientID,
		StaffID:         req.StaffID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.Duration,
		Notes:           req.Notes,
		PlanningLaneID:  req.PlanningLaneID,
	})
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

type reassignRequest struct {
	StaffID     *uuid.UUID `json:"staff_id"`
	LockVersion int        `json:"lock_version" validate:"gte=0"`
}

func (h *Handler) Reassign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reassignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	updated, err := h.svc.Reassign(c.Request().Context(), id, req.StaffID, req.LockVersion)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

type moveRequest struct {
	ScheduledAt time.Time  `json:"scheduled_at" validate:"required"`
	SetStaff    bool       `json:"set_staff"`
	StaffID     *uuid.UUID `json:"staff_id"`
	LockVersion int        `json:"lock_version" validate:"gte=0"`
}

func (h *Handler) Move(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	updated, err := h.svc.Move(c.Request().Context(), id, MoveInput{
		ScheduledAt: req.ScheduledAt,
		SetStaff:    req.SetStaff,
		StaffID:     req.StaffID,
		LockVersion: req.LockVersion,
	})
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

type updateRequest struct {
	ScheduledAt    *time.Time `json:"scheduled_at"`
	Duration       *int       `json:"duration"`
	Notes          *string    `json:"notes"`
	SetStaff       bool       `json:"set_staff"`
	StaffID        *uuid.UUID `json:"staff_id"`
	SetLane        bool       `json:"set_lane"`
	PlanningLaneID *uuid.UUID `json:"planning_lane_id"`
	LockVersion    int        `json:"lock_version" validate:"gte=0"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	updated, err := h.svc.Update(c.Request().Context(), id, UpdateInput{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.Duration,
		Notes:           req.Notes,
		SetStaff:        req.SetStaff,
		StaffID:         req.StaffID,
		SetLane:         req.SetLane,
		PlanningLaneID:  req.PlanningLaneID,
		LockVersion:     req.LockVersion,
	})
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.transition(c, h.svc.Complete)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Visit, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	updated, err := op(c.Request().Context(), id)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	confirmed := c.QueryParam("confirm") == "true"
	if err := h.svc.Delete(c.Request().Context(), id, confirmed); err != nil {
		return MapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MapError turns engine and collaborator errors into HTTP responses.
// Conflicts keep their classified code so callers can pick the right
// remediation instead of showing a generic failure.
func MapError(err error) *echo.HTTPError {
	if errors.Is(err, ErrConfirmationRequired) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var notEligible *NotEligibleError
	if errors.As(err, &notEligible) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var apiErr *careapi.APIError
	if errors.As(err, &apiErr) {
		kind := apiErr.Kind()
		switch kind {
		case careapi.KindDoubleBooking, careapi.KindStaleObject, careapi.KindGenericConflict:
			body := map[string]interface{}{
				"code":    kind.String(),
				"message": apiErr.Message,
			}
			if apiErr.LockVersion != nil {
				body["lock_version"] = *apiErr.LockVersion
			}
			return echo.NewHTTPError(http.StatusConflict, body)
		case careapi.KindValidation:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, apiErr.Message)
		default:
			return echo.NewHTTPError(http.StatusBadGateway, apiErr.Message)
		}
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	// Anything else is a local engine failure: a caller mistake, not a
	// collaborator or transport problem.
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
