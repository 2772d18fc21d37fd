package pattern

import (
	"net/http"
	"time"

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
	api.GET("/patterns", h.List)
	api.POST("/patterns", h.Create)
	api.PATCH("/patterns/:id", h.Update)
	api.DELETE("/patterns/:id", h.Delete)
	api.POST("/patterns/generate", h.Generate)
}

func (h *Handler) List(c echo.Context) error {
	patterns, err := h.svc.List(c.Request().Context())
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patterns": patterns})
}

type createPatternRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" validate:"required"`
	DefaultStaffID *uuid.UUID `json:"default_staff_id"`
	DayOfWeek      int        `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime      string     `json:"start_time" validate:"required"`
	Duration       int        `json:"duration" validate:"required"`
	Frequency      string     `json:"frequency" validate:"required"`
	PlanningLaneID *uuid.UUID `json:"planning_lane_id"`
	Active         *bool      `json:"active"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createPatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	created, err := h.svc.Create(c.Request().Context(), &Pattern{
		PatientID:       req.PatientID,
		DefaultStaffID:  req.DefaultStaffID,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.Duration,
		Frequency:       req.Frequency,
		PlanningLaneID:  req.PlanningLaneID,
		Active:          active,
	})
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

type updatePatternRequest struct {
	DefaultStaffID *uuid.UUID `json:"default_staff_id"`
	SetStaff       bool       `json:"set_staff"`
	DayOfWeek      *int       `json:"day_of_week"`
	StartTime      *string    `json:"start_time"`
	Duration       *int       `json:"duration"`
	Frequency      *string    `json:"frequency"`
	Active         *bool      `json:"active"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updatePatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fields := map[string]interface{}{}
	if req.SetStaff {
		fields["default_staff_id"] = req.DefaultStaffID
	}
	if req.DayOfWeek != nil {
		fields["day_of_week"] = *req.DayOfWeek
	}
	if req.StartTime != nil {
		fields["start_time"] = *req.StartTime
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.Frequency != nil {
		fields["frequency"] = *req.Frequency
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	updated, err := h.svc.Update(c.Request().Context(), id, fields)
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return visit.MapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type generateRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Weekdays  []int  `json:"weekdays" validate:"dive,gte=0,lte=6"`
	DryRun    bool   `json:"dry_run"`
}

func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	start, err := time.Parse(visit.DateLayout, req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid start_date")
	}
	end, err := time.Parse(visit.DateLayout, req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid end_date")
	}

	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	result, err := h.svc.Generate(c.Request().Context(), GenerateInput{
		Start:    start,
		End:      end,
		Weekdays: weekdays,
		DryRun:   req.DryRun,
	})
	if err != nil {
		return visit.MapError(err)
	}
	return c.JSON(http.StatusOK, result)
}
