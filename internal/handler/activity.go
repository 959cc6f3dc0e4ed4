package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-footprint-tracker/internal/middleware"
	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
	"github.com/iliyamo/carbon-footprint-tracker/internal/service"
)

// ActivityHandler serves the caller's activities and the views derived from
// them.
type ActivityHandler struct {
	Activities *service.ActivityService
	Log        *slog.Logger
}

func NewActivityHandler(acts *service.ActivityService, log *slog.Logger) *ActivityHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityHandler{Activities: acts, Log: log}
}

// Value is a pointer so that a missing value can be told apart from 0.
type createActivityReq struct {
	Type      string     `json:"type"`
	Value     *float64   `json:"value"`
	Unit      string     `json:"unit"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type activityResp struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Carbon    float64   `json:"carbon"`
	Timestamp time.Time `json:"timestamp"`
}

func toActivityResp(a *model.Activity) activityResp {
	return activityResp{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      a.Type,
		Value:     a.Value,
		Unit:      a.Unit,
		Carbon:    a.Carbon,
		Timestamp: a.Timestamp.UTC(),
	}
}

// List returns the caller's activities, oldest first.
func (h *ActivityHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	acts, err := h.Activities.List(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]activityResp, 0, len(acts))
	for _, a := range acts {
		out = append(out, toActivityResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Create logs an activity for the caller and returns it with its carbon
// estimate.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req createActivityReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	if req.Value == nil {
		return message(c, http.StatusBadRequest, msgMissingFields)
	}
	in := service.NewActivity{Type: req.Type, Value: *req.Value, Unit: req.Unit}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	a, err := h.Activities.Log(ctx, middleware.UserID(c), in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toActivityResp(a))
}

// Score returns {"score": total kg CO₂} for the caller.
func (h *ActivityHandler) Score(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	score, err := h.Activities.Score(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"score": score})
}

func (h *ActivityHandler) Suggestions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Activities.Suggestions(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActivityHandler) Achievements(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Activities.Achievements(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}
